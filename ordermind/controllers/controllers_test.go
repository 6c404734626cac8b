package controllers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/services/streaming"
	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.ChatTurn{}))
	return db
}

type sink struct{ frames []string }

func (s *sink) Emit(c string) error { s.frames = append(s.frames, c); return nil }
func (s *sink) Close() error        { return nil }

// --- Auth ---
func TestSignupHashesPassword(t *testing.T) {
	db := setupTestDB(t)
	users := dao.NewUserDAO(db)
	ctrl := NewAuthController(users, "s")
	ctx := context.Background()

	user, err := ctrl.Signup(ctx, types.SignupRequest{Email: " a@b.c ", Password: "secret", ConfirmPassword: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, DefaultRole, user.Role)

	stored, err := users.GetUserByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.Password)
	assert.True(t, strings.HasPrefix(stored.Password, "$2a$10$"))

	_, err = ctrl.Signup(ctx, types.SignupRequest{Email: "a@b.c", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = ctrl.Signup(ctx, types.SignupRequest{Email: "b@b.c", Password: "x", ConfirmPassword: "z"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestSigninIssuesVerifiableToken(t *testing.T) {
	db := setupTestDB(t)
	ctrl := NewAuthController(dao.NewUserDAO(db), "s")
	ctrl.now = func() time.Time { return time.Now().Add(-time.Hour) }
	ctx := context.Background()

	user, err := ctrl.Signup(ctx, types.SignupRequest{Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)

	token, err := ctrl.Signin(ctx, types.SigninRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	id, err := middlewares.ParseToken("s", token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = ctrl.Signin(ctx, types.SigninRequest{Email: "a@b.c", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ctrl.Signin(ctx, types.SigninRequest{Email: "who@b.c", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ctrl.Signin(ctx, types.SigninRequest{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrMissingFields)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = ctrl.Signin(ctx, types.SigninRequest{Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// --- Chat ---
func TestPrepareValidatesAndAssignsResourceID(t *testing.T) {
	ctrl := NewChatController(dao.NewMemoryDAO(setupTestDB(t)), nil, 0)

	req := types.ChatRequest{Prompt: ""}
	assert.ErrorIs(t, ctrl.Prepare(&req), ErrEmptyPrompt)
	req = types.ChatRequest{Prompt: " \n\t"}
	assert.ErrorIs(t, ctrl.Prepare(&req), ErrEmptyPrompt)
	assert.Empty(t, req.ResourceID)

	req = types.ChatRequest{Prompt: "hi"}
	require.NoError(t, ctrl.Prepare(&req))
	assert.Len(t, req.ResourceID, 32)

	req = types.ChatRequest{Prompt: "hi", ResourceID: "mine"}
	require.NoError(t, ctrl.Prepare(&req))
	assert.Equal(t, "mine", req.ResourceID)
}

func TestStreamRecordsExchange(t *testing.T) {
	memory := dao.NewMemoryDAO(setupTestDB(t))
	source := streaming.TokenSourceFunc(func(_ context.Context, prompt, format string, deliver func(streaming.Fragment)) string {
		deliver(streaming.Fragment{Content: format + ":" + prompt})
		deliver(streaming.Fragment{Content: streaming.Sentinel, Done: true})
		return format + ":" + prompt
	})
	ctrl := NewChatController(memory, source, time.Second)

	em := &sink{}
	// Stream returns only after the turns are written
	session := ctrl.Stream(context.Background(), types.ChatRequest{Prompt: "p", Format: "f", ResourceID: "r1"}, em)

	assert.Equal(t, streaming.StateCompleted, session.State())
	assert.Equal(t, []string{"f:p", streaming.Sentinel}, em.frames)

	turns, err := ctrl.History(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, turns, 2)

	home, err := ctrl.Home(context.Background(), nil, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, home.Data.ResourceIDs)

	require.NoError(t, ctrl.DeleteHistory(context.Background(), "r1"))
	assert.ErrorIs(t, ctrl.DeleteHistory(context.Background(), "r1"), dao.ErrNotFound)
	_, err = ctrl.History(context.Background(), "r1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

// --- Orders ---
func TestOrderUpdateIsPartial(t *testing.T) {
	ctrl := NewOrderController(dao.NewOrderDAO(setupTestDB(t)))
	ctx := context.Background()

	order, err := ctrl.CreateOrder(ctx, types.CreateOrderRequest{ProductName: "Chair", Price: 40})
	require.NoError(t, err)

	price := 35.0
	updated, err := ctrl.UpdateOrder(ctx, order.ID, types.UpdateOrderRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Chair", updated.ProductName)
	assert.Equal(t, 35.0, updated.Price)
	assert.Equal(t, "pending", updated.Status)

	negative := -1.0
	_, err = ctrl.UpdateOrder(ctx, order.ID, types.UpdateOrderRequest{Price: &negative})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = ctrl.UpdateOrder(ctx, 404, types.UpdateOrderRequest{Price: &price})
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = ctrl.UpdateOrder(ctx, 404, types.UpdateOrderRequest{})
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
