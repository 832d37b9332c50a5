package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/schema-designer/server/internal/agent/model"
	errx "github.com/schema-designer/server/internal/core/error"
	"github.com/schema-designer/server/internal/dbstructure"
	logx "github.com/schema-designer/server/pkg/logger"
)

//go:embed schema_tables.sql
var schemaTablesDDL string

const (
	selectSchemaQuery          = `SELECT schema FROM building_schemas WHERE id = $1`
	selectSchemaForUpdateQuery = `SELECT schema FROM building_schemas WHERE id = $1 FOR UPDATE`
	selectLatestVersionQuery   = `SELECT COALESCE(MAX(number), 0) FROM building_schema_versions WHERE building_schema_id = $1`
	insertVersionQuery         = `INSERT INTO building_schema_versions (id, building_schema_id, number, patch, reverse_patch, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	updateSchemaQuery          = `UPDATE building_schemas SET schema = $1, updated_at = $2 WHERE id = $3`
	seedSchemaQuery            = `INSERT INTO building_schemas (id, schema, updated_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
)

// PostgresSchemaRepository implements model.SchemaRepository on PostgreSQL.
// The current schema lives in building_schemas; every change is recorded in
// building_schema_versions with its forward patch and a reverse merge patch.
type PostgresSchemaRepository struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

type PostgresOption func(*PostgresSchemaRepository)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) PostgresOption {
	return func(r *PostgresSchemaRepository) { r.now = now }
}

// WithIDGenerator overrides the version id generator.
func WithIDGenerator(newID func() string) PostgresOption {
	return func(r *PostgresSchemaRepository) { r.newID = newID }
}

func NewPostgresSchemaRepository(db *sql.DB, opts ...PostgresOption) *PostgresSchemaRepository {
	r := &PostgresSchemaRepository{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureTables creates the schema tables if they do not exist.
func (r *PostgresSchemaRepository) EnsureTables(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaTablesDDL); err != nil {
		return errx.WrapPostgres(fmt.Errorf("create schema tables: %w", err))
	}
	return nil
}

// EnsureBuildingSchema inserts an empty building schema with the given id.
// An existing row is left as is.
func (r *PostgresSchemaRepository) EnsureBuildingSchema(ctx context.Context, buildingSchemaID string) error {
	emptyJSON, err := json.Marshal(dbstructure.Empty())
	if err != nil {
		return errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	res, err := r.db.ExecContext(ctx, seedSchemaQuery, buildingSchemaID, emptyJSON, r.now().UTC())
	if err != nil {
		return errx.WrapPostgres(fmt.Errorf("seed building schema %s: %w", buildingSchemaID, err))
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logx.Info().Str("building_schema_id", buildingSchemaID).Msg("Seeded empty building schema")
	}
	return nil
}

func (r *PostgresSchemaRepository) GetLatest(ctx context.Context, buildingSchemaID string) (*model.SchemaSnapshot, error) {
	var raw []byte
	if err := r.db.QueryRowContext(ctx, selectSchemaQuery, buildingSchemaID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errx.NotFound(buildingSchemaID)
		}
		logx.Error().Err(err).Str("building_schema_id", buildingSchemaID).Msg("failed to load building schema")
		return nil, errx.WrapPostgres(err)
	}
	current, err := decodeStoredSchema(raw)
	if err != nil {
		return nil, err
	}

	var latest int
	if err := r.db.QueryRowContext(ctx, selectLatestVersionQuery, buildingSchemaID).Scan(&latest); err != nil {
		logx.Error().Err(err).Str("building_schema_id", buildingSchemaID).Msg("failed to load latest version number")
		return nil, errx.WrapPostgres(err)
	}

	return &model.SchemaSnapshot{
		BuildingSchemaID:    buildingSchemaID,
		Schema:              current,
		LatestVersionNumber: latest,
	}, nil
}

func (r *PostgresSchemaRepository) CreateVersion(ctx context.Context, params model.CreateVersionParams) (*model.CreateVersionResult, error) {
	if params.BuildingSchemaID == "" {
		return nil, errx.New(fmt.Errorf("building schema id is empty"), http.StatusBadRequest, errx.InvalidPatchMessage)
	}
	if len(params.Patch) == 0 {
		return nil, errx.InvalidPatch(fmt.Errorf("patch is empty"))
	}
	if err := dbstructure.ValidateOperationList(params.Patch); err != nil {
		return nil, errx.InvalidPatch(err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("begin: %w", err))
	}

	result, err := r.createVersionTx(ctx, tx, params)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logx.Warn().Err(rbErr).Str("building_schema_id", params.BuildingSchemaID).Msg("rollback failed")
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logx.Error().Err(err).Str("building_schema_id", params.BuildingSchemaID).Msg("failed to commit schema version")
		return nil, errx.WrapPostgres(fmt.Errorf("commit: %w", err))
	}

	logx.Info().
		Str("building_schema_id", params.BuildingSchemaID).
		Int("version_number", result.VersionNumber).
		Int("operations", len(params.Patch)).
		Msg("schema version created")
	return result, nil
}

func (r *PostgresSchemaRepository) createVersionTx(ctx context.Context, tx *sql.Tx, params model.CreateVersionParams) (*model.CreateVersionResult, error) {
	id := params.BuildingSchemaID

	var raw []byte
	if err := tx.QueryRowContext(ctx, selectSchemaForUpdateQuery, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errx.NotFound(id)
		}
		return nil, errx.WrapPostgres(fmt.Errorf("lock building schema: %w", err))
	}
	current, err := decodeStoredSchema(raw)
	if err != nil {
		return nil, err
	}

	var latest int
	if err := tx.QueryRowContext(ctx, selectLatestVersionQuery, id).Scan(&latest); err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("latest version: %w", err))
	}
	if latest != params.LatestVersionNumber {
		logx.Warn().
			Str("building_schema_id", id).
			Int("expected", params.LatestVersionNumber).
			Int("actual", latest).
			Msg("schema version conflict")
		return nil, errx.VersionConflict(params.LatestVersionNumber, latest)
	}

	next, err := dbstructure.Apply(current, params.Patch)
	if err != nil {
		return nil, errx.InvalidPatch(err)
	}
	reverse, err := dbstructure.ReversePatch(current, next)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	patchJSON, err := json.Marshal(params.Patch)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	versionID := r.newID()
	number := latest + 1
	now := r.now().UTC()

	if _, err := tx.ExecContext(ctx, insertVersionQuery, versionID, id, number, patchJSON, reverse, now); err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("insert version: %w", err))
	}
	if _, err := tx.ExecContext(ctx, updateSchemaQuery, nextJSON, now, id); err != nil {
		return nil, errx.WrapPostgres(fmt.Errorf("update schema: %w", err))
	}

	return &model.CreateVersionResult{
		VersionID:     versionID,
		VersionNumber: number,
		Schema:        next,
	}, nil
}

func decodeStoredSchema(raw []byte) (dbstructure.Schema, error) {
	if len(raw) == 0 {
		return dbstructure.Empty(), nil
	}
	s, err := dbstructure.Decode(raw)
	if err != nil {
		logx.Error().Err(err).Msg("stored schema is not a valid schema document")
		return dbstructure.Schema{}, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	return s, nil
}

var _ model.SchemaRepository = (*PostgresSchemaRepository)(nil)
