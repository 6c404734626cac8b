package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/sources/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---
func setupVectors(t *testing.T) *dao.VectorDAO {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.VectorRecord{}))
	return dao.NewVectorDAO(db)
}

// keywordEmbedder maps text onto fixed axes so similarity is predictable.
type keywordEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

var axes = []string{"gym", "code", "rest"}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		v := make([]float64, len(axes)+1)
		v[len(axes)] = 0.01
		for j, a := range axes {
			if strings.Contains(strings.ToLower(text), a) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

type completer struct{ prompt, system string }

func (c *completer) Complete(_ context.Context, prompt, system string) (string, error) {
	c.prompt, c.system = prompt, system
	return "answer", nil
}

type objects map[string]*storage.Object

func (o objects) Get(_ context.Context, key string) (*storage.Object, error) {
	if obj, ok := o[key]; ok {
		return obj, nil
	}
	return nil, storage.ErrObjectNotFound
}

const diary = "Jan 1 morning: gym session.\n\nJan 1 afternoon: wrote code all day.\n\nJan 2: rest."

func newService(t *testing.T, emb *keywordEmbedder, c *completer) (*Service, *dao.VectorDAO) {
	vectors := setupVectors(t)
	objs := objects{
		"uploads/mydiary": {Key: "uploads/mydiary", ContentType: "text/plain", Data: []byte(diary)},
		"uploads/blank":   {Key: "uploads/blank", Data: []byte("\n\n  \n")},
	}
	return NewService(emb, c, vectors, objs, "be helpful", 0), vectors
}

func TestVectorizeStoresOneRecordPerParagraph(t *testing.T) {
	svc, vectors := newService(t, &keywordEmbedder{}, &completer{})
	n, err := svc.Vectorize(context.Background(), "uploads/mydiary", "example-index")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	matches, err := vectors.Query(context.Background(), "example-index", []float64{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "vector-1", matches[0].Record.ID)
	assert.Equal(t, "Jan 1 afternoon: wrote code all day.", matches[0].Record.Text)

	// re-vectorizing replaces rather than duplicates
	_, err = svc.Vectorize(context.Background(), "uploads/mydiary", "example-index")
	require.NoError(t, err)
	all, err := vectors.Query(context.Background(), "example-index", []float64{1, 1, 1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestVectorizeBatchesLargeDocuments(t *testing.T) {
	vectors := setupVectors(t)
	paras := make([]string, embedBatch*2+5)
	for i := range paras {
		paras[i] = fmt.Sprintf("entry %d", i)
	}
	emb := &keywordEmbedder{}
	svc := NewService(emb, &completer{}, vectors, objects{
		"uploads/big": {Key: "uploads/big", Data: []byte(strings.Join(paras, "\n\n"))},
	}, "", 0)

	n, err := svc.Vectorize(context.Background(), "uploads/big", "big")
	require.NoError(t, err)
	assert.Equal(t, len(paras), n)
	assert.Equal(t, 3, emb.calls)
}

func TestVectorizeErrors(t *testing.T) {
	svc, _ := newService(t, &keywordEmbedder{}, &completer{})
	_, err := svc.Vectorize(context.Background(), "uploads/missing", "i")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, err = svc.Vectorize(context.Background(), "uploads/blank", "i")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	failing, _ := newService(t, &keywordEmbedder{err: errors.New("quota")}, &completer{})
	_, err = failing.Vectorize(context.Background(), "uploads/mydiary", "i")
	assert.ErrorContains(t, err, "quota")
}

func TestQueryUsesClosestChunks(t *testing.T) {
	c := &completer{}
	svc, _ := newService(t, &keywordEmbedder{}, c)
	_, err := svc.Vectorize(context.Background(), "uploads/mydiary", "example-index")
	require.NoError(t, err)

	out, err := svc.Query(context.Background(), "what code did I write?", "example-index")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "be helpful", c.system)
	assert.True(t, strings.HasPrefix(c.prompt, "Based on the following context: Jan 1 afternoon: wrote code all day."))
	assert.True(t, strings.HasSuffix(c.prompt, "user's query: what code did I write?"))
}

func TestQueryEmptyIndexStillAnswers(t *testing.T) {
	c := &completer{}
	svc, _ := newService(t, &keywordEmbedder{}, c)
	_, err := svc.Query(context.Background(), "anything?", "nothing-here")
	require.NoError(t, err)
	assert.Contains(t, c.prompt, "context: , provide")
}
