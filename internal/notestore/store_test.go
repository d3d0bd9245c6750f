package notestore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
)

var th = richtext.DefaultTheme()

// fakeClock hands out strictly increasing times.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "notebook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() {
		os.Remove(f.Name())
		os.Remove(f.Name() + "-wal")
		os.Remove(f.Name() + "-shm")
	})

	s, err := Open(f.Name(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doc(text string) *richtext.Document {
	return richtext.FromText(text, th)
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestCreateFetchRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := doc("Todo\nmilk")
	in, _ = richtext.Apply(in, richtext.Caret(5), richtext.AddCheckbox{}, th)

	id, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	n, err := s.FetchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	out, err := richtext.Unmarshal(n.Content)
	require.NoError(t, err)
	assert.Equal(t, in.Runs, out.Runs)
}

func TestUpdate_RefreshesUpdatedAtOnly(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 4, 9, 10, 0, 0, 0, time.UTC)}
	s := testStore(t, WithClock(clock.Now))
	ctx := context.Background()

	id, err := s.Create(ctx, doc("First\nbody"))
	require.NoError(t, err)
	before, err := s.FetchByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, id, doc("Second\nchanged")))
	after, err := s.FetchByID(ctx, id)
	require.NoError(t, err)

	assert.True(t, after.CreatedAt.Equal(before.CreatedAt), "created_at changed")
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "updated_at not refreshed")

	got, err := richtext.Unmarshal(after.Content)
	require.NoError(t, err)
	assert.Equal(t, "Second\nchanged", got.PlainText())
}

func TestUpdate_NotFound(t *testing.T) {
	s := testStore(t)
	err := s.Update(context.Background(), "missing", doc("x"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_InvalidDocumentLeavesNoteUnchanged(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, doc("Keep\nme"))
	require.NoError(t, err)
	before, err := s.FetchByID(ctx, id)
	require.NoError(t, err)

	bad := &richtext.Document{Runs: []richtext.Run{{Text: "x", Checkbox: &richtext.Checkbox{}}}}
	err = s.Update(ctx, id, bad)
	require.ErrorIs(t, err, apperr.ErrSerialization)

	after, err := s.FetchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreate_RejectsNilDocument(t *testing.T) {
	s := testStore(t)
	_, err := s.Create(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrSerialization)

	all, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, doc("Bye"))
	require.NoError(t, err)
	keep, err := s.Create(ctx, doc("Stay"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteByID(ctx, id))
	_, err = s.FetchByID(ctx, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = s.DeleteByID(ctx, "unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestFetchAll_NewestFirst(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 4, 8, 9, 0, 0, 0, time.UTC)}
	s := testStore(t, WithClock(clock.Now))
	ctx := context.Background()

	groceries, err := s.Create(ctx, doc("Groceries\nMilk, eggs"))
	require.NoError(t, err)
	clock.t = clock.t.Add(24 * time.Hour)
	trip, err := s.Create(ctx, doc("Trip plan\nBook flights"))
	require.NoError(t, err)

	// Editing the older note must not move it up.
	require.NoError(t, s.Update(ctx, groceries, doc("Groceries\nMilk, eggs, bread")))

	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, trip, all[0].ID)
	assert.Equal(t, groceries, all[1].ID)
}

func TestFetchAll_TieBreaksOnID(t *testing.T) {
	fixed := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	var seq int
	s := testStore(t,
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%02d", seq) }),
	)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, doc("n"))
		require.NoError(t, err)
	}
	all, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"id-03", "id-02", "id-01"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, doc("Groceries\nMilk, eggs"))
	require.NoError(t, err)
	trip, err := s.Create(ctx, doc("Trip plan\nBook flights"))
	require.NoError(t, err)

	hits, err := s.Search(ctx, "flight", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, trip, hits[0].ID)

	hits, err = s.Search(ctx, "TRIP", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestSubscribe(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var got []models.Event
	unsubscribe := s.Subscribe(func(ev models.Event) { got = append(got, ev) })

	id, err := s.Create(ctx, doc("A"))
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, id, doc("B")))
	require.Error(t, s.DeleteByID(ctx, "missing"))
	require.NoError(t, s.DeleteByID(ctx, id))

	assert.Equal(t, []models.Event{
		{Kind: models.EventCreated, ID: id},
		{Kind: models.EventUpdated, ID: id},
		{Kind: models.EventDeleted, ID: id},
	}, got)

	unsubscribe()
	_, err = s.Create(ctx, doc("C"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestIDsAreUnique(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := s.Create(ctx, doc("x"))
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCreateAt_KeepsCreationTime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 4, 9, 10, 0, 0, 0, time.UTC)}
	s := testStore(t, WithClock(clock.Now))
	ctx := context.Background()

	created := time.Date(2024, 12, 31, 22, 15, 0, 0, time.UTC)
	id, err := s.CreateAt(ctx, doc("Old note\nfrom last year"), created)
	require.NoError(t, err)

	n, err := s.FetchByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, n.CreatedAt.Equal(created), "created_at = %v", n.CreatedAt)
	assert.True(t, n.UpdatedAt.After(created), "updated_at = %v", n.UpdatedAt)

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err = s.CreateAt(ctx, doc("Later"), future)
	require.NoError(t, err)
	n, err = s.FetchByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, n.UpdatedAt.Equal(future), "updated_at before created_at: %v", n.UpdatedAt)

	id, err = s.CreateAt(ctx, doc("Now"), time.Time{})
	require.NoError(t, err)
	n, err = s.FetchByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, n.CreatedAt.After(created))
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
}

func TestSearch_FoldsNonASCIICase(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, doc("ÉTÉ À PARIS\nCafé crème"))
	require.NoError(t, err)

	for _, q := range []string{"été", "ÉTÉ", "CAFÉ", "à paris"} {
		hits, err := s.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1, "query %q", q)
		assert.Equal(t, id, hits[0].ID)
	}
}
