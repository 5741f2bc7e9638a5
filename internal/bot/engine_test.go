package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avtopoisk/vin-parts-bridge/internal/decode"
	"github.com/avtopoisk/vin-parts-bridge/internal/parts"
	"github.com/avtopoisk/vin-parts-bridge/internal/session"
)

const testVIN = "WBA3A5C50DF123456"

type fakeDecoder struct {
	vehicle decode.Vehicle
	err     error
}

func (d *fakeDecoder) Decode(_ context.Context, _ string) (decode.Vehicle, error) {
	return d.vehicle, d.err
}

type fakeSearcher struct {
	results  []parts.Candidate
	err      error
	lastVIN  string
	lastText string
	calls    int
}

func (s *fakeSearcher) Search(_ context.Context, vin, query string) ([]parts.Candidate, error) {
	s.calls++
	s.lastVIN = vin
	s.lastText = query
	return s.results, s.err
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons []Button
}

type fakeOutbound struct {
	sent []sentMessage
}

func (o *fakeOutbound) SendText(_ context.Context, chatID int64, text string, buttons []Button) error {
	o.sent = append(o.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (o *fakeOutbound) last(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, o.sent)
	return o.sent[len(o.sent)-1]
}

type fakePhotos struct {
	image []byte
	err   error
}

func (p *fakePhotos) Fetch(_ context.Context, _ string) ([]byte, error) {
	return p.image, p.err
}

type fakeOCR struct {
	text string
	err  error
}

func (o *fakeOCR) ImageToText(_ context.Context, _ []byte) (string, error) {
	return o.text, o.err
}

type engineFixture struct {
	store    *session.Store
	decoder  *fakeDecoder
	searcher *fakeSearcher
	outbound *fakeOutbound
	photos   *fakePhotos
	ocr      *fakeOCR
	engine   *Engine
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		store:    session.NewStore(),
		decoder:  &fakeDecoder{vehicle: decode.Vehicle{Make: "BMW", Year: 2013, Provenance: "offline"}},
		searcher: &fakeSearcher{},
		outbound: &fakeOutbound{},
		photos:   &fakePhotos{image: []byte("jpeg")},
		ocr:      &fakeOCR{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.engine = NewEngine(
		f.store, f.decoder, f.searcher, f.photos, f.ocr, f.outbound,
		logger, t.TempDir(), time.Second, 4,
	)
	return f
}

func (f *engineFixture) text(chatID int64, text string) {
	f.engine.HandleEvent(context.Background(), Event{ChatID: chatID, Kind: EventText, Text: text})
}

func (f *engineFixture) confirmed(t *testing.T, chatID int64) {
	t.Helper()
	f.text(chatID, testVIN)
	f.text(chatID, "да")
	require.Equal(t, session.PhaseAwaitingPartQuery, f.store.Get(chatID).Phase)
}

func TestStartShowsEntryButtons(t *testing.T) {
	f := newFixture(t)

	f.text(1, "/start")

	msg := f.outbound.last(t)
	require.Equal(t, replyGreeting, msg.text)
	require.Len(t, msg.buttons, 2)
	require.Equal(t, session.PhaseAwaitingVIN, f.store.Get(1).Phase)
}

func TestValidVINMovesToConfirm(t *testing.T) {
	f := newFixture(t)

	f.text(1, testVIN)

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingConfirm, sess.Phase)
	require.Equal(t, testVIN, sess.VIN)
	require.NotNil(t, sess.Vehicle)
	require.Equal(t, "Ваш автомобиль: BMW 2013. Верно? (да/нет)", f.outbound.last(t).text)
}

func TestShortTextRejected(t *testing.T) {
	f := newFixture(t)

	f.text(1, "WBA123")

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingVIN, sess.Phase)
	require.Empty(t, sess.VIN)
	require.Equal(t, replyBadVIN, f.outbound.last(t).text)
}

func TestDecodeFailureLeavesSessionClean(t *testing.T) {
	f := newFixture(t)
	f.decoder.err = fmt.Errorf("%w: bad structure", decode.ErrMalformedVIN)

	f.text(1, testVIN)

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingVIN, sess.Phase)
	require.Empty(t, sess.VIN)
	require.Nil(t, sess.Vehicle)
	require.Equal(t, replyDecodeFailed, f.outbound.last(t).text)
}

func TestDecodeProviderDownGetsRetryMessage(t *testing.T) {
	f := newFixture(t)
	f.decoder.err = decode.ErrProviderUnavailable

	f.text(1, testVIN)

	require.Equal(t, replyDecodeUnavailable, f.outbound.last(t).text)
	require.Equal(t, session.PhaseAwaitingVIN, f.store.Get(1).Phase)
}

func TestDecodeTimeoutGetsRetryMessage(t *testing.T) {
	f := newFixture(t)
	f.decoder.err = decode.ErrProviderTimeout

	f.text(1, testVIN)

	require.Equal(t, replyDecodeUnavailable, f.outbound.last(t).text)
}

func TestConfirmYesKeepsVehicle(t *testing.T) {
	f := newFixture(t)

	f.text(1, testVIN)
	f.text(1, "да")

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingPartQuery, sess.Phase)
	require.Equal(t, testVIN, sess.VIN)
	require.NotNil(t, sess.Vehicle)
	require.Equal(t, replyEnterPart, f.outbound.last(t).text)
}

func TestConfirmVernoAlsoAffirmative(t *testing.T) {
	f := newFixture(t)

	f.text(1, testVIN)
	f.text(1, "Верно")

	require.Equal(t, session.PhaseAwaitingPartQuery, f.store.Get(1).Phase)
}

func TestConfirmNoClearsSession(t *testing.T) {
	f := newFixture(t)

	f.text(1, testVIN)
	f.text(1, "нет")

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingVIN, sess.Phase)
	require.Empty(t, sess.VIN)
	require.Nil(t, sess.Vehicle)
	require.Equal(t, replyEnterVIN, f.outbound.last(t).text)
}

func TestConfirmAnythingElseAlsoClears(t *testing.T) {
	f := newFixture(t)

	f.text(1, testVIN)
	f.text(1, "ну не знаю")

	require.Empty(t, f.store.Get(1).VIN)
	require.Equal(t, session.PhaseAwaitingVIN, f.store.Get(1).Phase)
}

func TestPartQueryEmptyResults(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)

	f.text(1, "масляный фильтр")

	require.Equal(t, 1, f.searcher.calls)
	require.Equal(t, testVIN, f.searcher.lastVIN)
	require.Equal(t, replyNothingFound, f.outbound.last(t).text)
	require.Equal(t, session.PhaseAwaitingPartQuery, f.store.Get(1).Phase)
}

func TestPartQueryUnrecognizedSkipsProvider(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)

	f.text(1, "привет")

	require.Equal(t, 0, f.searcher.calls)
	require.Equal(t, replyClarify, f.outbound.last(t).text)
	require.Equal(t, session.PhaseAwaitingPartQuery, f.store.Get(1).Phase)
}

func TestPartQuerySearchErrorReadsAsNothingFound(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)
	f.searcher.err = errors.New("backend exploded")

	f.text(1, "масляный фильтр")

	require.Equal(t, replyNothingFound, f.outbound.last(t).text)
	require.Equal(t, session.PhaseAwaitingPartQuery, f.store.Get(1).Phase)
}

func TestSixCandidatesPresentedAsFour(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)

	for i := 0; i < 6; i++ {
		f.searcher.results = append(f.searcher.results, parts.Candidate{
			Article: fmt.Sprintf("ART-%d", i),
			Name:    fmt.Sprintf("Фильтр %d", i),
			Price:   fmt.Sprintf("%d руб.", 100*(i+1)),
		})
	}

	f.text(1, "масляный фильтр")

	msg := f.outbound.last(t)
	require.Len(t, msg.buttons, 4)
	// Provider order preserved, no re-sorting.
	require.Equal(t, "select:ART-0", msg.buttons[0].Data)
	require.Equal(t, "select:ART-3", msg.buttons[3].Data)
	require.Equal(t, session.PhasePresentedOptions, f.store.Get(1).Phase)
	require.Equal(t, "масляный фильтр", f.store.Get(1).PendingQuery)
}

func TestSelectionRecordsArticle(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)
	f.searcher.results = []parts.Candidate{{Article: "W712/75", Name: "Фильтр"}}
	f.text(1, "масляный фильтр")

	f.engine.HandleEvent(context.Background(), Event{
		ChatID: 1, Kind: EventCallback, CallbackData: "select:W712/75",
	})

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseSelected, sess.Phase)
	require.Equal(t, "W712/75", sess.SelectedArticle)
	require.Contains(t, f.outbound.last(t).text, "W712/75")
}

func TestSelectionIgnoredOutsidePresentedOptions(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleEvent(context.Background(), Event{
		ChatID: 1, Kind: EventCallback, CallbackData: "select:W712/75",
	})

	require.Empty(t, f.store.Get(1).SelectedArticle)
}

func TestNewVINAfterSelectionRestartsCycle(t *testing.T) {
	f := newFixture(t)
	f.confirmed(t, 1)
	f.searcher.results = []parts.Candidate{{Article: "A", Name: "Фильтр"}}
	f.text(1, "фильтр")
	f.engine.HandleEvent(context.Background(), Event{
		ChatID: 1, Kind: EventCallback, CallbackData: "select:A",
	})
	require.Equal(t, session.PhaseSelected, f.store.Get(1).Phase)

	f.text(1, "1HGCM82633A004352")

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingConfirm, sess.Phase)
	require.Equal(t, "1HGCM82633A004352", sess.VIN)
	require.Empty(t, sess.SelectedArticle)
}

func TestEntryButtonsPrompt(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventCallback, CallbackData: callbackUploadPhoto})
	require.Equal(t, replyUploadPhoto, f.outbound.last(t).text)

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventCallback, CallbackData: callbackEnterVIN})
	require.Equal(t, replyTypeVIN, f.outbound.last(t).text)
}

func TestPhotoFlowDecodesVIN(t *testing.T) {
	f := newFixture(t)
	f.ocr.text = "VIN plate:\nWBA3A5C50DF123456 extra"

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventPhoto, PhotoFileID: "file123"})

	sess := f.store.Get(1)
	require.Equal(t, session.PhaseAwaitingConfirm, sess.Phase)
	// OCR noise keeps the leading letters of the plate text, so the
	// extractor takes the first 17 alphanumerics it sees.
	require.Len(t, sess.VIN, 17)
	require.Contains(t, f.outbound.last(t).text, "Верно?")
}

func TestPhotoFlowOCRFailure(t *testing.T) {
	f := newFixture(t)
	f.ocr.err = errors.New("blurry")

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventPhoto, PhotoFileID: "file123"})

	require.Equal(t, replyOCRFailed, f.outbound.last(t).text)
	require.Equal(t, session.PhaseAwaitingVIN, f.store.Get(1).Phase)
}

func TestPhotoFlowTooLittleText(t *testing.T) {
	f := newFixture(t)
	f.ocr.text = "abc"

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventPhoto, PhotoFileID: "file123"})

	require.Equal(t, replyOCRFailed, f.outbound.last(t).text)
}

func TestPhotoFlowFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.photos.err = errors.New("telegram down")

	f.engine.HandleEvent(context.Background(), Event{ChatID: 1, Kind: EventPhoto, PhotoFileID: "file123"})

	require.Equal(t, replyOCRFailed, f.outbound.last(t).text)
}
