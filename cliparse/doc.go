// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered in increasing priority:

 1. a .env file (path from ENV_FILE, default ".env"; missing is fine)
 2. environment variables, decoded with github.com/caarlos0/env
 3. CLI flags

godotenv never overrides variables that are already set.

# Environment Variables

	PORT            -p              default 3318
	DATABASE_URL    -d              default tracker.db for sqlite
	DATABASE_TYPE   -t              sqlite | postgres (default sqlite)
	SESSION_SECRET  --session-secret required
	SESSION_TTL                     default 720h
	STORE_TYPE      --store         sql | redis | memory (default sql)
	REDIS_URL       --redis         required for the redis store
	STORE_TIMEOUT   --store-timeout default 5s
	ALLOWED_ORIGINS                 comma separated CORS origins
	MATCH_LINKAGE   --linkage       id | name (default id)
	BCRYPT_COST                     0 uses bcrypt.DefaultCost

# Validation

ParseFlags returns an error if:

  - SESSION_SECRET is missing
  - DATABASE_TYPE is postgres and no DATABASE_URL is given
  - STORE_TYPE is redis and no REDIS_URL is given
  - a database or store type is unknown, or the port is out of range

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	handler, err := router.NewRouter(conn, cfg, states)
*/
package cliparse
