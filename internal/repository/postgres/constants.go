package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	constraintEmail       = "users_email_key"
	migrationsDialect     = "pgx"

	errUserNotFound  = "user not found"
	errAssetNotFound = "asset not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedOpenMigrationDBFmt      = "failed to open migration connection: %w"
	errFailedRunMigrationsFmt        = "failed to run migrations: %w"

	errFailedStartTransactionFmt  = "failed to start transaction: %w"
	errFailedCommitTransactionFmt = "failed to commit transaction: %w"
	errFailedLinkGoogleAccountFmt = "failed to link google account: %w"

	errFailedCreateUserFmt = "failed to create user: %w"
	errFailedGetUserFmt    = "failed to get user: %w"
	errFailedListUsersFmt  = "failed to list users: %w"
	errFailedScanUserFmt   = "failed to scan user: %w"

	errFailedCreateAssetFmt = "failed to create asset: %w"
	errFailedGetAssetFmt    = "failed to get asset: %w"
	errFailedListAssetsFmt  = "failed to list assets: %w"
	errFailedScanAssetFmt   = "failed to scan asset: %w"
	errFailedDeleteAssetFmt = "failed to delete asset: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedOpenMigrationDB      = func(err error) error { return fmt.Errorf(errFailedOpenMigrationDBFmt, err) }
	errFailedRunMigrations        = func(err error) error { return fmt.Errorf(errFailedRunMigrationsFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedLinkGoogleAccount    = func(err error) error { return fmt.Errorf(errFailedLinkGoogleAccountFmt, err) }
	errFailedCreateUser           = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetUser              = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListUsers            = func(err error) error { return fmt.Errorf(errFailedListUsersFmt, err) }
	errFailedScanUser             = func(err error) error { return fmt.Errorf(errFailedScanUserFmt, err) }
	errFailedCreateAsset          = func(err error) error { return fmt.Errorf(errFailedCreateAssetFmt, err) }
	errFailedGetAsset             = func(err error) error { return fmt.Errorf(errFailedGetAssetFmt, err) }
	errFailedListAssets           = func(err error) error { return fmt.Errorf(errFailedListAssetsFmt, err) }
	errFailedScanAsset            = func(err error) error { return fmt.Errorf(errFailedScanAssetFmt, err) }
	errFailedDeleteAsset          = func(err error) error { return fmt.Errorf(errFailedDeleteAssetFmt, err) }
)
