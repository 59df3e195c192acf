// Package store provides the SQLite-backed route store.
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads/writes
//   - A unique index on path backing the duplicate-path check
//   - Connection pooling for concurrent access
//   - Busy timeout for handling locks
//
// # Basic Usage
//
//	st, err := store.NewSQLiteStore(&store.SQLiteConfig{
//	    Path: "data/portico.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	created, err := st.Insert(ctx, &route.Route{
//	    Path:      "/api/users",
//	    TargetURL: "http://user-service:8081",
//	})
//
// # Thread Safety
//
// The store is safe for concurrent use; WAL mode enables concurrent readers
// while the admin surface writes.
package store
