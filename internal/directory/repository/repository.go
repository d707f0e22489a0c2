package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"marketplace_backend/internal/filters"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	providerNotFoundMessage = "provider not found"
	maxListLimit            = 500
)

// providerColumns is shared by every read so scanProvider stays in sync.
// Tags are stored in profile_tags as (filter_key, dotted label path) rows; the
// two arrays share one ordering so they pair up by index.
const providerColumns = `
	p.id, p.display_name, COALESCE(p.phone, ''), COALESCE(p.full_address, ''),
	p.latitude, p.longitude, COALESCE(p.location_source, ''),
	COALESCE((SELECT array_agg(sa.zip_code ORDER BY sa.created_at, sa.zip_code)
		FROM service_areas sa WHERE sa.profile_id = p.id), '{}'),
	COALESCE((SELECT array_agg(pt.filter_key ORDER BY pt.filter_key, pt.path)
		FROM profile_tags pt WHERE pt.profile_id = p.id), '{}'),
	COALESCE((SELECT array_agg(pt.path ORDER BY pt.filter_key, pt.path)
		FROM profile_tags pt WHERE pt.profile_id = p.id), '{}')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new provider repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListProviders returns one page of active providers ordered by name, with
// the search, ZIP and tag filters applied in SQL.
func (r *Repo) ListProviders(ctx context.Context, params ListParams) (ListResult, error) {
	var searchParam interface{}
	if s := strings.TrimSpace(params.Search); s != "" {
		searchParam = "%" + s + "%"
	}
	var zipParam interface{}
	if z := strings.TrimSpace(params.ZipCode); z != "" {
		zipParam = z
	}

	args := []interface{}{searchParam, zipParam}
	tagFilter, args := tagPredicates(params.Tags, args)
	baseQuery := `
		FROM profiles p
		WHERE p.is_provider = true AND p.is_active = true
			AND ($1::text IS NULL OR p.display_name ILIKE $1 OR p.full_address ILIKE $1)
			AND ($2::text IS NULL OR EXISTS (
				SELECT 1 FROM service_areas sa WHERE sa.profile_id = p.id AND sa.zip_code = $2))` + tagFilter

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count providers: %w", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(params.Offset, 0)

	selectQuery := `
		SELECT ` + providerColumns + baseQuery + fmt.Sprintf(`
		ORDER BY p.display_name ASC, p.id ASC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	items, err := scanProviders(rows)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

// tagPredicates adds one EXISTS clause per filter key, numbering its
// placeholders after args. A selected path matches the stored path itself or
// anything below it.
func tagPredicates(tags map[string][][]string, args []interface{}) (string, []interface{}) {
	keys := make([]string, 0, len(tags))
	for key, paths := range tags {
		if len(paths) > 0 {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		exact := make([]string, 0, len(tags[key]))
		below := make([]string, 0, len(tags[key]))
		for _, path := range tags[key] {
			encoded := filters.FormatPath(path)
			exact = append(exact, encoded)
			below = append(below, likeEscaper.Replace(encoded)+".%")
		}
		args = append(args, key, exact, below)
		n := len(args)
		fmt.Fprintf(&b, `
			AND EXISTS (
				SELECT 1 FROM profile_tags pt
				WHERE pt.profile_id = p.id AND pt.filter_key = $%d
					AND (pt.path = ANY($%d::text[]) OR pt.path LIKE ANY($%d::text[])))`, n-2, n-1, n)
	}
	return b.String(), args
}

// GetProvider retrieves a provider by ID.
func (r *Repo) GetProvider(ctx context.Context, id uuid.UUID) (Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM profiles p
		WHERE p.id = $1 AND p.is_provider = true`

	p, err := scanProvider(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// ListMissingCoordinates returns providers with an address or service area
// but no stored coordinate, oldest first.
func (r *Repo) ListMissingCoordinates(ctx context.Context, limit int) ([]Provider, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	query := `
		SELECT ` + providerColumns + `
		FROM profiles p
		WHERE p.is_provider = true
			AND (p.latitude IS NULL OR p.longitude IS NULL)
			AND (COALESCE(p.full_address, '') <> ''
				OR EXISTS (SELECT 1 FROM service_areas sa WHERE sa.profile_id = p.id))
		ORDER BY p.created_at ASC, p.id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list providers missing coordinates: %w", err)
	}
	defer rows.Close()

	return scanProviders(rows)
}

// UpdateCoordinates stores a resolved location on the provider.
func (r *Repo) UpdateCoordinates(ctx context.Context, params UpdateCoordinatesParams) error {
	query := `
		UPDATE profiles
		SET latitude = $2, longitude = $3, location_source = $4, location_updated_at = now()
		WHERE id = $1 AND is_provider = true`

	tag, err := r.pool.Exec(ctx, query, params.ID, params.Lat, params.Lng, params.Source)
	if err != nil {
		return fmt.Errorf("update provider coordinates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(providerNotFoundMessage)
	}
	return nil
}

func scanProviders(rows pgx.Rows) ([]Provider, error) {
	items := make([]Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return items, nil
}

func scanProvider(row pgx.Row) (Provider, error) {
	var (
		p        Provider
		tagKeys  []string
		tagPaths []string
	)
	if err := row.Scan(
		&p.ID, &p.DisplayName, &p.Phone, &p.FullAddress,
		&p.Latitude, &p.Longitude, &p.LocationSource,
		&p.ServiceAreaZips, &tagKeys, &tagPaths,
	); err != nil {
		return Provider{}, err
	}
	p.Tags = parseTags(tagKeys, tagPaths)
	return p, nil
}

// parseTags groups stored paths by filter key. Paths that do not decode are
// dropped rather than failing the row.
func parseTags(keys, raw []string) map[string][][]string {
	out := make(map[string][][]string)
	for i := range min(len(keys), len(raw)) {
		if path, ok := filters.ParsePath(raw[i]); ok {
			out[keys[i]] = append(out[keys[i]], path)
		}
	}
	return out
}
