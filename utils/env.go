package utils

import (
	"os"
	"time"
)

var (
	MASTER_ADDR = GetEnvOrDefault("MASTER_ADDR", "http://localhost:7100")

	// Suppresses the "created table ..." info line after a successful create
	SUPPRESS_CREATED_LOGS = os.Getenv("SUPPRESS_CREATED_LOGS") == "1"

	// Applied to admin operations (create table, wait for ready) when the
	// caller does not set an explicit timeout
	DEFAULT_ADMIN_TIMEOUT = time.Millisecond * time.Duration(GetEnvOrDefaultInt("DEFAULT_ADMIN_TIMEOUT_MS", 30_000))
)
