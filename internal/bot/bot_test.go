package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwind/medicoes/internal/domain/inventory"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/logger"
	"github.com/gwind/medicoes/internal/syncer"
)

const admin = int64(42)

type sent struct {
	chatID int64
	text   string
}

type fakeAPI struct {
	out     []sent
	updates chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.out = append(f.out, sent{chatID: msg.ChatID, text: msg.Text})
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

type fakeMaterials struct {
	byID  map[int64]materials.Material
	found []materials.Material
	term  string
}

func (f *fakeMaterials) GetByID(_ context.Context, id int64) (*materials.Material, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, materials.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMaterials) Search(_ context.Context, term string, _ int) ([]materials.Material, error) {
	f.term = term
	return f.found, nil
}

type fakeSyncer struct {
	res   syncer.Result
	err   error
	calls int
}

func (f *fakeSyncer) Run(context.Context) (syncer.Result, error) {
	f.calls++
	return f.res, f.err
}

func command(chatID int64, text, cmd string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func newBot(api *fakeAPI, mats *fakeMaterials, s *fakeSyncer) *Bot {
	return New(api, logger.Discard(), admin, mats, s)
}

func TestNotifySyncSkipsEmptyCycles(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	b := newBot(api, &fakeMaterials{}, &fakeSyncer{})

	b.NotifySync(context.Background(), syncer.Result{RowsProcessed: 10, Duplicates: 10})
	assert.Empty(t, api.out)

	b.NotifySync(context.Background(), syncer.Result{
		RowsProcessed: 10,
		EventsCreated: 3,
		Errors:        7,
		ErrorDetails:  []string{"a", "b", "c", "d", "e", "f", "g"},
	})
	require.Len(t, api.out, 1)
	assert.Equal(t, admin, api.out[0].chatID)
	assert.Contains(t, api.out[0].text, "Medições criadas: 3")
	assert.Contains(t, api.out[0].text, "Erros: 7")
	assert.Contains(t, api.out[0].text, "- e")
	assert.NotContains(t, api.out[0].text, "- f")
	assert.Contains(t, api.out[0].text, "e mais 2")
}

func TestNotifyDepleted(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	mats := &fakeMaterials{byID: map[int64]materials.Material{
		7: {ID: 7, CodeItem: "RES01", Description: "Resina", Unit: "kg"},
	}}
	b := newBot(api, mats, &fakeSyncer{})

	b.NotifyDepleted(context.Background(), inventory.Movement{MaterialID: 7, Requested: 2.5, Applied: 1})
	require.Len(t, api.out, 1)
	assert.Contains(t, api.out[0].text, "RES01 - Resina")
	assert.Contains(t, api.out[0].text, "Solicitado 2,5 kg, debitado 1 kg")

	b.NotifyDepleted(context.Background(), inventory.Movement{MaterialID: 99})
	assert.Len(t, api.out, 1)
}

func TestCommands(t *testing.T) {
	t.Parallel()

	p := "P1"
	api := &fakeAPI{}
	mats := &fakeMaterials{found: []materials.Material{
		{CodeItem: "RES01", Description: "Resina", Unit: "kg", CurrentStock: 70.5, Project: &p},
	}}
	s := &fakeSyncer{res: syncer.Result{RowsProcessed: 4, EventsCreated: 2}}
	b := newBot(api, mats, s)
	ctx := context.Background()

	b.onMessage(ctx, command(admin, "/estoque RES01", "/estoque"))
	require.Len(t, api.out, 1)
	assert.Equal(t, "RES01", mats.term)
	assert.Equal(t, "RES01 - Resina: 70,5 kg (projeto P1)", api.out[0].text)

	b.onMessage(ctx, command(admin, "/sync", "/sync"))
	require.Len(t, api.out, 2)
	assert.Equal(t, 1, s.calls)
	assert.Contains(t, api.out[1].text, "Medições criadas: 2")

	s.err = syncer.ErrBusy
	b.onMessage(ctx, command(admin, "/sync", "/sync"))
	require.Len(t, api.out, 3)
	assert.Equal(t, "Sincronização já em andamento.", api.out[2].text)

	b.onMessage(ctx, command(admin, "/estoque", "/estoque"))
	require.Len(t, api.out, 4)
	assert.Contains(t, api.out[3].text, "Uso:")
}

func TestCommandsFromOtherChatsAreIgnored(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	s := &fakeSyncer{}
	b := newBot(api, &fakeMaterials{}, s)

	b.onMessage(context.Background(), command(7, "/sync", "/sync"))
	b.onMessage(context.Background(), &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: admin}, Text: "oi"})

	assert.Zero(t, s.calls)
	assert.Empty(t, api.out)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	b := newBot(api, &fakeMaterials{}, &fakeSyncer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, 30) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
