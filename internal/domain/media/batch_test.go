package media

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventadmin/internal/pkg/notice"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type MockHost struct {
	mock.Mock
}

func (m *MockHost) Upload(ctx context.Context, f File) (string, error) {
	args := m.Called(ctx, f.Name)
	return args.String(0), args.Error(1)
}

func image(name string) File {
	return NewFile(name, pngHeader)
}

func sized(name string, size int64) File {
	return File{Name: name, Size: size, ContentType: "image/jpeg"}
}

func newBatch(t *testing.T, mode Mode, host Host) *Batch {
	t.Helper()
	policy, err := PolicyFor(mode)
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	return NewBatch(policy, host, log)
}

func TestNewFileSniffsImages(t *testing.T) {
	f := image("banner.png")
	assert.Equal(t, "image/png", f.ContentType)
	assert.True(t, f.IsImage())

	txt := NewFile("notes.png", []byte("just some text"))
	assert.False(t, txt.IsImage())
}

func TestSingleModeSkipsOversizedFile(t *testing.T) {
	b := newBatch(t, ModeSingle, new(MockHost))

	notices, err := b.SelectFiles([]File{sized("huge.jpg", 6*1024*1024)})
	require.NoError(t, err)
	assert.Empty(t, b.Pending())
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelWarning, notices[0].Level)
	assert.Contains(t, notices[0].Message, "5MB")
}

func TestSingleModeReplacesSelection(t *testing.T) {
	b := newBatch(t, ModeSingle, new(MockHost))

	_, err := b.SelectFiles([]File{image("a.png")})
	require.NoError(t, err)
	_, err = b.SelectFiles([]File{image("b.png"), image("c.png")})
	require.NoError(t, err)

	pending := b.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "b.png", pending[0].Name)
}

func TestMultiModeRejectsAdditionOverCap(t *testing.T) {
	b := newBatch(t, ModeMulti, new(MockHost))

	var ten []File
	for i := 0; i < 10; i++ {
		ten = append(ten, image(fmt.Sprintf("%d.png", i)))
	}
	_, err := b.SelectFiles(ten)
	require.NoError(t, err)

	_, err = b.SelectFiles([]File{image("x.png"), image("y.png"), image("z.png")})
	var violation *PolicyViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Reason, "maximum of 12")
	assert.Len(t, b.Pending(), 10, "pending set must be unchanged")

	_, err = b.SelectFiles([]File{image("x.png"), image("y.png")})
	require.NoError(t, err)
	assert.Len(t, b.Pending(), 12)
}

func TestMultiModeSkipsOversizedAndNonImages(t *testing.T) {
	b := newBatch(t, ModeMulti, new(MockHost))

	notices, err := b.SelectFiles([]File{
		image("ok.png"),
		sized("big.jpg", 13*1024*1024),
		NewFile("doc.pdf", []byte("%PDF-1.4\n")),
	})
	require.NoError(t, err)
	assert.Len(t, b.Pending(), 1)
	require.Len(t, notices, 2)
	assert.Contains(t, notices[0].Message, "12MB")
	assert.Contains(t, notices[1].Message, "not images")
}

func TestRemoveFile(t *testing.T) {
	b := newBatch(t, ModeMulti, new(MockHost))
	_, err := b.SelectFiles([]File{image("a.png"), image("b.png"), image("c.png")})
	require.NoError(t, err)

	require.NoError(t, b.RemoveFile(1))
	pending := b.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "a.png", pending[0].Name)
	assert.Equal(t, "c.png", pending[1].Name)

	var violation *PolicyViolation
	assert.ErrorAs(t, b.RemoveFile(5), &violation)
}

func TestUploadWithNothingSelected(t *testing.T) {
	host := new(MockHost)
	b := newBatch(t, ModeSingle, host)

	_, err := b.Upload(context.Background())
	var violation *PolicyViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "Please select a file to upload.", violation.Reason)
	host.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadPartialSuccess(t *testing.T) {
	host := new(MockHost)
	host.On("Upload", mock.Anything, "1.png").Return("https://cdn.example/1.png", nil).Once()
	host.On("Upload", mock.Anything, "2.png").Return("", errors.New("500 from host")).Once()
	host.On("Upload", mock.Anything, "3.png").Return("https://cdn.example/3.png", nil).Once()

	b := newBatch(t, ModeMulti, host)
	_, err := b.SelectFiles([]File{image("1.png"), image("2.png"), image("3.png")})
	require.NoError(t, err)

	res, err := b.Upload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://cdn.example/1.png", "https://cdn.example/3.png"}, res.URLs)
	assert.Equal(t, []string{"2.png"}, res.Failed)
	require.Len(t, res.Notices, 2)
	assert.Equal(t, notice.LevelError, res.Notices[0].Level)
	assert.Contains(t, res.Notices[0].Message, "2.png")
	assert.Equal(t, notice.LevelSuccess, res.Notices[1].Level)
	assert.Equal(t, "2 image(s) uploaded successfully!", res.Notices[1].Message)

	assert.Empty(t, b.Pending())
	assert.Equal(t, res.URLs, b.Uploaded())
	host.AssertExpectations(t)
}

func TestUploadTotalFailureKeepsSelection(t *testing.T) {
	host := new(MockHost)
	host.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("network down"))

	b := newBatch(t, ModeMulti, host)
	_, err := b.SelectFiles([]File{image("1.png"), image("2.png")})
	require.NoError(t, err)

	res, err := b.Upload(context.Background())
	require.ErrorIs(t, err, ErrNothingUploaded)
	assert.Empty(t, res.URLs)
	assert.Len(t, res.Notices, 2)
	for _, n := range res.Notices {
		assert.Equal(t, notice.LevelError, n.Level)
	}
	assert.Len(t, b.Pending(), 2)
	host.AssertNumberOfCalls(t, "Upload", 2)
}

func TestUploadPreservesSelectionOrder(t *testing.T) {
	host := new(MockHost)
	var order []string
	host.On("Upload", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, args.String(1))
	}).Return("https://cdn.example/x.png", nil)

	b := newBatch(t, ModeMulti, host)
	_, err := b.SelectFiles([]File{image("c.png"), image("a.png"), image("b.png")})
	require.NoError(t, err)

	_, err = b.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c.png", "a.png", "b.png"}, order)
}

func TestRegistrySweepsIdleBatches(t *testing.T) {
	log, _ := test.NewNullLogger()
	reg := NewRegistry(new(MockHost), time.Minute, log)

	stale, err := reg.Open(ModeSingle)
	require.NoError(t, err)
	fresh, err := reg.Open(ModeMulti)
	require.NoError(t, err)

	stale.lastUsed.Store(time.Now().Add(-2 * time.Minute).UnixNano())

	removed := reg.Sweep(time.Now())
	assert.Equal(t, 1, removed)

	_, err = reg.Get(stale.ID())
	assert.ErrorIs(t, err, ErrBatchNotFound)
	got, err := reg.Get(fresh.ID())
	require.NoError(t, err)
	assert.Equal(t, ModeMulti, got.Policy().Mode)

	assert.True(t, reg.Discard(fresh.ID()))
	assert.False(t, reg.Discard(fresh.ID()))
	assert.Zero(t, reg.Len())
}

func TestRegistryRejectsUnknownMode(t *testing.T) {
	log, _ := test.NewNullLogger()
	reg := NewRegistry(new(MockHost), time.Minute, log)

	_, err := reg.Open("gallery")
	var violation *PolicyViolation
	assert.ErrorAs(t, err, &violation)
}
