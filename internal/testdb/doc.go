// Package testdb opens migrated databases for tests.
//
// OpenSQLite gives every test its own SQLite file, so tests using it can run
// in parallel. OpenPostgres connects to the database named by DATABASE_URL
// (or REVIEW_TEST_DATABASE_URL) and skips the test when neither is set; tests
// sharing it isolate themselves with WithTx:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    testdb.WithTx(t, db, func(tx *sql.Tx) {
//	        schedules := postgres.NewPostgresScheduleStore(db, nil).WithTx(tx)
//	        // ...
//	    })
//	}
package testdb
