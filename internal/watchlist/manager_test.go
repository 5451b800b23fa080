package watchlist

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, path string) (*Manager, *Broker) {
	t.Helper()
	broker := NewBroker(4)
	m, err := NewManager(NewStore(path), broker)
	require.NoError(t, err)
	return m, broker
}

func TestManager_AddSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, _ := newTestManager(t, path)
	assert.Empty(t, m.Items())

	change, err := m.Add("AAPL")
	require.NoError(t, err)
	assert.True(t, change.Applied)

	// New session reads the same file.
	reloaded, _ := newTestManager(t, path)
	assert.Equal(t, List{"AAPL"}, reloaded.Items())
}

func TestManager_RemoveSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, NewStore(path).Save(List{"AAPL", "MSFT"}))

	m, _ := newTestManager(t, path)
	_, err := m.Remove("AAPL")
	require.NoError(t, err)

	reloaded, _ := newTestManager(t, path)
	assert.Equal(t, List{"MSFT"}, reloaded.Items())
}

func TestManager_DuplicateAndMissAreNotApplied(t *testing.T) {
	m, broker := newTestManager(t, filepath.Join(t.TempDir(), "watchlist.json"))
	sub := broker.Subscribe("test")

	_, err := m.Add("AAPL")
	require.NoError(t, err)
	<-sub.C

	dup, err := m.Add("AAPL")
	require.NoError(t, err)
	assert.False(t, dup.Applied)

	miss, err := m.Remove("TSLA")
	require.NoError(t, err)
	assert.False(t, miss.Applied)
	assert.Equal(t, List{"AAPL"}, miss.Items)

	select {
	case evt := <-sub.C:
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestManager_PublishesAppliedChanges(t *testing.T) {
	m, broker := newTestManager(t, filepath.Join(t.TempDir(), "watchlist.json"))
	sub := broker.Subscribe("test")
	defer broker.Unsubscribe(sub)

	_, err := m.Add("SPY")
	require.NoError(t, err)

	evt := <-sub.C
	assert.Equal(t, ActionAdd, evt.Action)
	assert.Equal(t, "SPY", evt.Symbol)
	assert.Equal(t, List{"SPY"}, evt.Items)
}

func TestManager_SaveFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "watchlist.json")
	m, _ := newTestManager(t, path)

	// Replace the parent directory with a file so the next save fails.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), nil, 0o644))

	change, err := m.Add("AAPL")
	require.Error(t, err)
	assert.False(t, change.Applied)
	assert.Empty(t, m.Items())
}

func TestNewManager_LoadFailure(t *testing.T) {
	_, err := NewManager(NewStore(t.TempDir()), nil)
	assert.Error(t, err)
}

func TestManager_ConcurrentChangesPublishInSaveOrder(t *testing.T) {
	broker := NewBroker(64)
	m, err := NewManager(NewStore(filepath.Join(t.TempDir(), "watchlist.json")), broker)
	require.NoError(t, err)
	sub := broker.Subscribe("test")
	defer broker.Unsubscribe(sub)

	symbols := []string{"AAPL", "MSFT", "GOOGL", "TSLA", "SPY", "VOO", "QQQ", "NVDA"}
	var wg sync.WaitGroup
	for _, s := range symbols {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			_, err := m.Add(s)
			assert.NoError(t, err)
		}(s)
	}
	wg.Wait()

	var last Event
	for i := range symbols {
		evt := <-sub.C
		assert.Len(t, evt.Items, i+1)
		last = evt
	}
	assert.Equal(t, m.Items(), last.Items)
}

func TestOpenManager_UnreadableFileIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	broker := NewBroker(4)
	sub := broker.Subscribe("test")
	defer broker.Unsubscribe(sub)

	m, err := OpenManager(NewStore(path), broker)
	require.Error(t, err)
	require.NotNil(t, m)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "load", se.Op)
	assert.Equal(t, err, m.LoadErr())
	assert.Empty(t, m.Items())

	change, err := m.Add("AAPL")
	assert.ErrorAs(t, err, &se)
	assert.False(t, change.Applied)
	_, err = m.Remove("AAPL")
	assert.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
	assert.Empty(t, sub.C)
}

func TestOpenManager_ReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, NewStore(path).Save(List{"SPY"}))

	m, err := OpenManager(NewStore(path), nil)
	require.NoError(t, err)
	assert.NoError(t, m.LoadErr())
	assert.Equal(t, List{"SPY"}, m.Items())
}
