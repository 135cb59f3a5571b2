package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

var _ repository.EventRepository = (*eventRepo)(nil)

type eventRepo struct{ pool *pgxpool.Pool }

func NewEventRepo(pool *pgxpool.Pool) *eventRepo {
	return &eventRepo{pool: pool}
}

const eventColumns = `event_id, event_name, start_date, end_date, duration_minutes, parent_id, COALESCE(description, '')`

func (r *eventRepo) InsertIgnore(ctx context.Context, tx repository.Tx, ev *model.Event) (bool, error) {
	const q = `
INSERT INTO events (event_id, event_name, start_date, end_date, duration_minutes, parent_id, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (event_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		ev.EventID, ev.EventName, ev.StartDate, ev.EndDate, ev.DurationMinutes, ev.ParentID, ev.Description)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%w: %w", domain.ErrUnknownParent, err)
		}
		return false, translateError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *eventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+eventColumns+` FROM events WHERE event_id=$1;`, id)
	if err != nil {
		return nil, err
	}
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(err)
	}
	return ev, nil
}

// The path array stops both walks at the first repeated event, so a cycle
// in parent links ends the recursion instead of looping.
const (
	parentChainQuery = `
WITH RECURSIVE parent_chain AS (
    SELECT e.event_id, e.event_name, e.start_date, e.end_date, e.duration_minutes, e.parent_id, e.description,
           0 AS level, ARRAY[e.event_id] AS path
    FROM events e
    WHERE e.event_id = $1
  UNION ALL
    SELECT p.event_id, p.event_name, p.start_date, p.end_date, p.duration_minutes, p.parent_id, p.description,
           pc.level + 1, pc.path || p.event_id
    FROM events p
    JOIN parent_chain pc ON pc.parent_id = p.event_id
    WHERE NOT p.event_id = ANY(pc.path)
)
SELECT event_id, event_name, start_date, end_date, duration_minutes, parent_id, COALESCE(description, ''), level
FROM parent_chain
ORDER BY start_date, level;`

	childHierarchyQuery = `
WITH RECURSIVE event_hierarchy AS (
    SELECT e.event_id, e.event_name, e.start_date, e.end_date, e.duration_minutes, e.parent_id, e.description,
           0 AS level, ARRAY[e.event_id] AS path
    FROM events e
    WHERE e.event_id = $1
  UNION ALL
    SELECT c.event_id, c.event_name, c.start_date, c.end_date, c.duration_minutes, c.parent_id, c.description,
           eh.level + 1, eh.path || c.event_id
    FROM events c
    JOIN event_hierarchy eh ON c.parent_id = eh.event_id
    WHERE NOT c.event_id = ANY(eh.path)
)
SELECT event_id, event_name, start_date, end_date, duration_minutes, parent_id, COALESCE(description, ''), level
FROM event_hierarchy
ORDER BY level, start_date, event_id;`
)

func (r *eventRepo) Timeline(ctx context.Context, tx repository.Tx, rootID string) (*model.Timeline, error) {
	root, err := r.FindByID(ctx, tx, rootID)
	if err != nil {
		return nil, err
	}
	parents, err := r.hierarchy(ctx, tx, parentChainQuery, rootID)
	if err != nil {
		return nil, err
	}
	children, err := r.hierarchy(ctx, tx, childHierarchyQuery, rootID)
	if err != nil {
		return nil, err
	}
	return &model.Timeline{Root: root, Parents: parents, Children: children}, nil
}

func (r *eventRepo) hierarchy(ctx context.Context, tx repository.Tx, q, rootID string) ([]*model.HierarchyNode, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, rootID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []*model.HierarchyNode{}
	for rows.Next() {
		n := &model.HierarchyNode{}
		if err := rows.Scan(&n.EventID, &n.EventName, &n.StartDate, &n.EndDate, &n.DurationMinutes, &n.ParentID, &n.Description, &n.Level); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		normalizeEvent(&n.Event)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

var sortColumns = map[model.SortField]string{
	model.SortByStartDate: "start_date",
	model.SortByEndDate:   "end_date",
	model.SortByEventName: "event_name",
}

func (r *eventRepo) Search(ctx context.Context, tx repository.Tx, s model.EventSearch) (*model.EventPage, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	if s.NameContains != "" {
		args = append(args, "%"+escapeLike(s.NameContains)+"%")
		where = append(where, fmt.Sprintf("event_name ILIKE $%d", len(args)))
	}
	if s.StartAfter != nil {
		args = append(args, *s.StartAfter)
		where = append(where, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if s.EndBefore != nil {
		args = append(args, *s.EndBefore)
		where = append(where, fmt.Sprintf("end_date <= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	page := &model.EventPage{Limit: s.Limit, Offset: s.Offset, Events: []*model.Event{}}
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM events WHERE `+cond+`;`, args...)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&page.Total); err != nil {
		return nil, translateError(err)
	}

	col, ok := sortColumns[s.SortBy]
	if !ok {
		col = "start_date"
	}
	dir := "ASC"
	if s.SortDescending {
		dir = "DESC"
	}
	args = append(args, s.Limit, s.Offset)
	q := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s %s, event_id LIMIT $%d OFFSET $%d;`,
		eventColumns, cond, col, dir, len(args)-1, len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		page.Events = append(page.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return page, nil
}

func (r *eventRepo) Overlaps(ctx context.Context, tx repository.Tx) ([]*model.OverlapPair, error) {
	const q = `
SELECT a.event_id, a.event_name, a.start_date, a.end_date, a.duration_minutes, a.parent_id, COALESCE(a.description, ''),
       b.event_id, b.event_name, b.start_date, b.end_date, b.duration_minutes, b.parent_id, COALESCE(b.description, '')
FROM events a
JOIN events b ON a.event_id < b.event_id
             AND a.start_date < b.end_date
             AND a.end_date > b.start_date
ORDER BY a.start_date, a.event_id, b.event_id;`

	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []*model.OverlapPair{}
	for rows.Next() {
		var a, b model.Event
		if err := rows.Scan(
			&a.EventID, &a.EventName, &a.StartDate, &a.EndDate, &a.DurationMinutes, &a.ParentID, &a.Description,
			&b.EventID, &b.EventName, &b.StartDate, &b.EndDate, &b.DurationMinutes, &b.ParentID, &b.Description,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		normalizeEvent(&a)
		normalizeEvent(&b)
		out = append(out, model.NewOverlapPair(&a, &b))
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	ev := &model.Event{}
	if err := row.Scan(&ev.EventID, &ev.EventName, &ev.StartDate, &ev.EndDate, &ev.DurationMinutes, &ev.ParentID, &ev.Description); err != nil {
		return nil, err
	}
	normalizeEvent(ev)
	return ev, nil
}

func normalizeEvent(ev *model.Event) {
	ev.StartDate = ev.StartDate.UTC()
	ev.EndDate = ev.EndDate.UTC()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
