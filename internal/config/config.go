package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // optional .env file support for local development
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The struct is built once at process start
// and passed by value into constructors; nothing mutates it afterwards.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    // Auth policy knobs.  RequireConfirmedEmail gates login on email
    // verification.  DenylistFailOpen controls what happens when the
    // revocation cache is unreachable: false (the default) fails the
    // request, true degrades to treating the token as not revoked.
    RequireConfirmedEmail bool
    DenylistFailOpen      bool

    // Failed-login throttling over Redis.  LoginMaxAttempts failures per
    // LoginWindowSec seconds lock the account name out of login until the
    // window rolls over.  Zero attempts disables the limiter.
    LoginMaxAttempts int
    LoginWindowSec   int
}

// Load reads configuration values from environment variables and returns
// a Config.  A .env file, when present, is merged in first so that local
// development does not need to export anything.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
    _ = godotenv.Load() // missing .env is fine; real env always wins

    return Config{
        Env:            must("APP_ENV"),  // environment (dev/test/prod)
        Port:           must("APP_PORT"), // port to bind the HTTP server
        DBUser:         must("DB_USER"),  // database user
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 30),  // 30 minutes by default
        RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7), // 7 days by default
        BcryptCost:     intOr("BCRYPT_COST", 10),

        RequireConfirmedEmail: boolOr("AUTH_REQUIRE_CONFIRMED_EMAIL", true),
        DenylistFailOpen:      boolOr("AUTH_DENYLIST_FAIL_OPEN", false),

        LoginMaxAttempts: intOr("LOGIN_MAX_ATTEMPTS", 10),
        LoginWindowSec:   intOr("LOGIN_WINDOW_SEC", 900),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intOr retrieves an integer environment variable, falling back to def
// when unset.  A value that is present but not an integer is a fatal
// configuration error rather than a silent fallback.
func intOr(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// boolOr retrieves a boolean environment variable ("true"/"1" vs
// "false"/"0"), falling back to def when unset.
func boolOr(key string, def bool) bool {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    b, err := strconv.ParseBool(s)
    if err != nil {
        log.Fatalf("invalid bool for %s: %q", key, s)
    }
    return b
}
