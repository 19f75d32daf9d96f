package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

const itemsTable = "saved_items"

var itemColumns = []string{
	"id", "user_id", "url", "status", "title", "content", "og_image", "author",
	"published_at", "summary", "tags", "created_at", "updated_at",
}

// ErrTerminalStatus is returned when an update tries to move an item out of COMPLETED or FAILED.
var ErrTerminalStatus = errors.New("item status is terminal")

// ItemRepository persists saved items in Postgres or SQLite.
type ItemRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.ItemStore        = (*ItemRepository)(nil)
	_ ports.StaleItemSweeper = (*ItemRepository)(nil)
)

// NewItemRepository wires a sql.DB with the dialect it was opened with.
func NewItemRepository(db *sql.DB, dialect Dialect) *ItemRepository {
	return &ItemRepository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new item in the given pre-terminal status.
func (r *ItemRepository) Create(ctx context.Context, userID, url string, status domain.Status) (domain.SavedItem, error) {
	if r.db == nil {
		return domain.SavedItem{}, errors.New("database connection not available")
	}
	if !status.Valid() {
		return domain.SavedItem{}, fmt.Errorf("create item: unknown status %q", status)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("generate id: %w", err)
	}
	now := r.now()
	item := domain.SavedItem{
		ID:        id.String(),
		UserID:    userID,
		URL:       url,
		Status:    status,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := r.sb.Insert(itemsTable).
		Columns("id", "user_id", "url", "status", "tags", "created_at", "updated_at").
		Values(item.ID, item.UserID, item.URL, string(item.Status), "[]", now, now).
		ToSql()
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return domain.SavedItem{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// Update applies upd to the item owned by userID.
func (r *ItemRepository) Update(ctx context.Context, id, userID string, upd domain.ItemUpdate) (domain.SavedItem, error) {
	if r.db == nil {
		return domain.SavedItem{}, errors.New("database connection not available")
	}

	set, err := updateColumns(upd)
	if err != nil {
		return domain.SavedItem{}, err
	}
	set["updated_at"] = r.now()

	where := sq.And{sq.Eq{"id": id, "user_id": userID}}
	if upd.Status != nil {
		where = append(where, sq.Eq{"status": []string{string(domain.StatusPending), string(domain.StatusProcessing)}})
	}

	query, args, err := r.sb.Update(itemsTable).SetMap(set).Where(where).ToSql()
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("rows affected: %w", err)
	}

	item, err := r.FindOne(ctx, id, userID)
	if err != nil {
		return domain.SavedItem{}, err
	}
	if affected == 0 && upd.Status != nil {
		return item, fmt.Errorf("move item %s to %s: %w", id, *upd.Status, ErrTerminalStatus)
	}
	return item, nil
}

// FindMany lists the user's items, newest first.
func (r *ItemRepository) FindMany(ctx context.Context, userID string) ([]domain.SavedItem, error) {
	if r.db == nil {
		return nil, errors.New("database connection not available")
	}

	query, args, err := r.sb.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]domain.SavedItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return items, nil
}

// FindOne returns the item or domain.ErrItemNotFound when userID does not own it.
func (r *ItemRepository) FindOne(ctx context.Context, id, userID string) (domain.SavedItem, error) {
	if r.db == nil {
		return domain.SavedItem{}, errors.New("database connection not available")
	}

	query, args, err := r.sb.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return domain.SavedItem{}, fmt.Errorf("build select: %w", err)
	}

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SavedItem{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.SavedItem{}, err
	}
	return item, nil
}

// FailStale marks items created before olderThan that are still PENDING or PROCESSING as FAILED.
func (r *ItemRepository) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	if r.db == nil {
		return 0, errors.New("database connection not available")
	}

	query, args, err := r.sb.Update(itemsTable).
		Set("status", string(domain.StatusFailed)).
		Set("updated_at", r.now()).
		Where(sq.Eq{"status": []string{string(domain.StatusPending), string(domain.StatusProcessing)}}).
		Where(sq.Lt{"created_at": olderThan.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sweep: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sweep stale items: %w", err)
	}
	return res.RowsAffected()
}

func updateColumns(upd domain.ItemUpdate) (map[string]any, error) {
	set := map[string]any{}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, fmt.Errorf("update item: unknown status %q", *upd.Status)
		}
		set["status"] = string(*upd.Status)
	}

	if upd.ClearExtracted {
		for _, col := range []string{"title", "content", "og_image", "author", "published_at"} {
			set[col] = nil
		}
	} else {
		if upd.Title != nil {
			set["title"] = *upd.Title
		}
		if upd.Content != nil {
			set["content"] = *upd.Content
		}
		if upd.OGImage != nil {
			set["og_image"] = *upd.OGImage
		}
		if upd.Author != nil {
			set["author"] = *upd.Author
		}
		if upd.PublishedAt != nil {
			set["published_at"] = upd.PublishedAt.UTC()
		}
	}

	if upd.Summary != nil {
		set["summary"] = *upd.Summary
	}
	if upd.SetTags {
		tags := upd.Tags
		if tags == nil {
			tags = []string{}
		}
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		set["tags"] = string(raw)
	}
	return set, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.SavedItem, error) {
	var (
		item                                   domain.SavedItem
		status, tags                           string
		title, content, image, author, summary sql.NullString
		publishedAt                            sql.NullTime
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.URL, &status,
		&title, &content, &image, &author,
		&publishedAt, &summary, &tags,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SavedItem{}, err
		}
		return domain.SavedItem{}, fmt.Errorf("scan item: %w", err)
	}

	item.Status = domain.Status(status)
	item.Title = nullString(title)
	item.Content = nullString(content)
	item.OGImage = nullString(image)
	item.Author = nullString(author)
	item.Summary = nullString(summary)
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		item.PublishedAt = &t
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	item.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
			return domain.SavedItem{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return item, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
