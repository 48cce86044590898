// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open picks the driver from the database type:

	conn, err := db.Open(db.TypeSQLite, "tracker.db")           // modernc.org/sqlite
	conn, err := db.Open(db.TypePostgres, "postgres://...")     // github.com/lib/pq

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Queries use $N placeholders, which both drivers accept.

# Tables

  - account: email + bcrypt password hash per user
  - auth_session: one row per issued session token; revoked_at set on sign-out
  - user_state: JSON decks and matches documents, one row per user
*/
package db
