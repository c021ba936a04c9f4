package uploadui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/model"
)

const (
	melDescription = "黑色素瘤是一种恶性皮肤肿瘤，需要及时就医诊断治疗。"
	melAdvice      = "1. 立即就医进行专业诊断和治疗\n2. 避免阳光暴晒，使用高倍数防晒霜\n3. 定期进行皮肤自我检查\n4. 如病变有变化（大小、形状、颜色等）应及时就医\n5. 可能需要手术切除及后续治疗"
)

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

type fakeRecognizer struct {
	got  []byte
	resp *model.RecognitionResult
	err  error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error) {
	f.got = image
	return f.resp, f.err
}

type fakeView struct {
	preview        string
	changeVisible  bool
	submitEnabled  bool
	loading        bool
	loadingShown   int
	resultsVisible bool
	result         ResultView
	alerts         []string
	highlight      bool
}

func (v *fakeView) ShowPreview(src string) { v.preview = src }
func (v *fakeView) ShowChangeButton(b bool) { v.changeVisible = b }
func (v *fakeView) SetSubmitEnabled(b bool) { v.submitEnabled = b }
func (v *fakeView) SetResultsVisible(b bool) { v.resultsVisible = b }
func (v *fakeView) ShowResult(r ResultView) { v.result = r }
func (v *fakeView) Alert(msg string) { v.alerts = append(v.alerts, msg) }
func (v *fakeView) SetDropHighlight(on bool) { v.highlight = on }
func (v *fakeView) SetLoading(b bool) {
	v.loading = b
	if b {
		v.loadingShown++
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(File{Name: "a.jpg", MIMEType: "image/jpeg", Data: jpeg}))
	assert.NoError(t, Validate(File{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\n....")}))
	assert.ErrorIs(t, Validate(File{Name: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}), ErrNotImage)
	assert.ErrorIs(t, Validate(File{Name: "big.jpg", MIMEType: "image/jpeg", Data: make([]byte, MaxImageBytes+1)}), ErrTooLarge)
	assert.NoError(t, Validate(File{Name: "edge.jpg", MIMEType: "image/jpeg", Data: make([]byte, MaxImageBytes)}))
}

func TestDataURLRoundTrip(t *testing.T) {
	u := EncodeDataURL("image/jpeg", jpeg)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4AAQSkZJRg==", u)

	b, mime, err := DecodeDataURL(u)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, jpeg, b)

	_, _, err = DecodeDataURL("data:image/png;base64")
	assert.Error(t, err)
}

func TestProbabilityBand(t *testing.T) {
	assert.Equal(t, "非常高", ProbabilityBand(0.81))
	assert.Equal(t, "高", ProbabilityBand(0.8))
	assert.Equal(t, "高", ProbabilityBand(0.61))
	assert.Equal(t, "中等", ProbabilityBand(0.6))
	assert.Equal(t, "中等", ProbabilityBand(0.41))
	assert.Equal(t, "低", ProbabilityBand(0.4))
	assert.Equal(t, "低", ProbabilityBand(0))
}

func TestBuildResult(t *testing.T) {
	cat := disease.Default()

	t.Run("top detection", func(t *testing.T) {
		v := BuildResult(&model.RecognitionResult{
			Status:         "success",
			AnnotatedImage: "QUJD",
			Detections:     []model.Detection{{ClassName: "MEL", Confidence: 0.876}, {ClassName: "NV", Confidence: 0.2}},
		}, "data:image/jpeg;base64,xx", cat)
		assert.Equal(t, "data:image/png;base64,QUJD", v.ImageSrc)
		assert.Equal(t, "MEL", v.DiseaseName)
		assert.Equal(t, "88%", v.Confidence)
		assert.Equal(t, "非常高", v.Probability)
		assert.Equal(t, melDescription, v.Description)
	})

	t.Run("unknown code uses fallback", func(t *testing.T) {
		v := BuildResult(&model.RecognitionResult{Detections: []model.Detection{{ClassName: "XYZ", Confidence: 0.5}}}, "preview", cat)
		assert.Equal(t, "preview", v.ImageSrc)
		assert.Equal(t, disease.FallbackDescription, v.Description)
		assert.Equal(t, disease.FallbackAdvice, v.Advice)
		assert.Equal(t, "中等", v.Probability)
	})

	t.Run("no detections", func(t *testing.T) {
		v := BuildResult(&model.RecognitionResult{Status: "success"}, "preview", cat)
		assert.Equal(t, ResultView{
			ImageSrc:    "preview",
			DiseaseName: "未发现皮肤病",
			Confidence:  "0%",
			Probability: "低",
			Description: "未在图片中检测到明显的皮肤病症状",
			Advice:      "如有疑虑，请咨询专业医生",
		}, v)
	})
}

func TestController_HappyPath(t *testing.T) {
	rec := &fakeRecognizer{resp: &model.RecognitionResult{
		Status:     "success",
		Detections: []model.Detection{{ClassName: "BCC", Confidence: 0.65}},
	}}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())

	require.NoError(t, c.SelectFile(File{Name: "a.jpg", MIMEType: "image/jpeg", Data: jpeg}))
	assert.Equal(t, ImageSelected, c.Phase())
	assert.True(t, view.submitEnabled)
	assert.True(t, view.changeVisible)
	assert.Equal(t, EncodeDataURL("image/jpeg", jpeg), view.preview)

	require.NoError(t, c.Submit(context.Background()))
	assert.True(t, bytes.Equal(jpeg, rec.got))
	assert.Equal(t, ResultShown, c.Phase())
	assert.Equal(t, 1, view.loadingShown)
	assert.False(t, view.loading)
	assert.True(t, view.resultsVisible)
	assert.Equal(t, "BCC", view.result.DiseaseName)
	assert.Equal(t, "65%", view.result.Confidence)
	assert.Equal(t, "高", view.result.Probability)
	assert.Empty(t, view.alerts)
}

func TestController_RejectsInvalidFile(t *testing.T) {
	view := &fakeView{}
	c := NewController(&fakeRecognizer{}, view, nil, zerolog.Nop())

	err := c.SelectFile(File{Name: "a.txt", MIMEType: "text/plain", Data: []byte("hi")})
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Equal(t, []string{AlertNotImage}, view.alerts)
	assert.Equal(t, NoImage, c.Phase())
	assert.False(t, view.submitEnabled)
}

func TestController_SubmitFailure(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("status 500")}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())
	require.NoError(t, c.SelectFile(File{MIMEType: "image/jpeg", Data: jpeg}))

	err := c.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{AlertRecognize}, view.alerts)
	assert.False(t, view.loading)
	assert.False(t, view.resultsVisible)
	assert.Equal(t, ImageSelected, c.Phase())
}

func TestController_SubmitWithoutImage(t *testing.T) {
	c := NewController(&fakeRecognizer{}, &fakeView{}, nil, zerolog.Nop())
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNoImage)
}

func TestController_DragAndDrop(t *testing.T) {
	view := &fakeView{}
	c := NewController(&fakeRecognizer{}, view, nil, zerolog.Nop())

	c.DragOver()
	assert.True(t, view.highlight)
	c.DragLeave()
	assert.False(t, view.highlight)

	c.DragOver()
	require.NoError(t, c.Drop([]File{{MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}}))
	assert.False(t, view.highlight)
	assert.Equal(t, ImageSelected, c.Phase())
}

func TestController_Reset(t *testing.T) {
	rec := &fakeRecognizer{resp: &model.RecognitionResult{Status: "success"}}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())
	require.NoError(t, c.SelectFile(File{MIMEType: "image/jpeg", Data: jpeg}))
	require.NoError(t, c.Submit(context.Background()))

	c.Reset()
	assert.Equal(t, NoImage, c.Phase())
	assert.Empty(t, view.preview)
	assert.False(t, view.changeVisible)
	assert.False(t, view.submitEnabled)
	assert.False(t, view.resultsVisible)
	assert.Equal(t, Placeholder(), view.result)
	assert.Equal(t, "未识别", view.result.DiseaseName)
}

func TestController_RejectsBeforeNetwork(t *testing.T) {
	rec := &fakeRecognizer{}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())

	err := c.SelectFile(File{Name: "huge.jpg", MIMEType: "image/jpeg", Data: make([]byte, 6<<20)})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNoImage)
	assert.Nil(t, rec.got)
	assert.Equal(t, []string{AlertTooLarge}, view.alerts)
}

func TestBuildResult_MEL(t *testing.T) {
	cat := disease.Default()
	v := BuildResult(&model.RecognitionResult{
		Detections: []model.Detection{{ClassName: "MEL", Confidence: 0.92}},
	}, "preview", cat)
	assert.Equal(t, "MEL", v.DiseaseName)
	assert.Equal(t, "92%", v.Confidence)
	assert.Equal(t, "非常高", v.Probability)
	assert.Equal(t, melDescription, v.Description)
	assert.Equal(t, melAdvice, v.Advice)
	assert.NotEqual(t, cat.Description("MEL"), v.Description, "panel uses the short text, disease_info keeps the long one")

	bcc := BuildResult(&model.RecognitionResult{
		Detections: []model.Detection{{ClassName: "BCC", Confidence: 0.5}},
	}, "preview", cat)
	assert.Equal(t, cat.Description("BCC"), bcc.Description)
}

// blockingRecognizer parks each call until release is closed.
type blockingRecognizer struct {
	started chan struct{}
	release chan struct{}
	resp    *model.RecognitionResult
}

func (b *blockingRecognizer) Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error) {
	close(b.started)
	<-b.release
	return b.resp, nil
}

func TestController_LateResultAfterResetAndReselect(t *testing.T) {
	rec := &blockingRecognizer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		resp:    &model.RecognitionResult{Detections: []model.Detection{{ClassName: "MEL", Confidence: 0.9}}},
	}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())
	file := File{Name: "a.jpg", MIMEType: "image/jpeg", Data: jpeg}
	require.NoError(t, c.SelectFile(file))

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-rec.started

	c.Reset()
	require.NoError(t, c.SelectFile(file))
	close(rec.release)
	require.NoError(t, <-done)

	assert.Equal(t, ImageSelected, c.Phase())
	assert.False(t, view.resultsVisible)
	assert.False(t, view.loading)
	assert.Equal(t, Placeholder(), view.result)
}

func TestController_BusyWhileSubmitting(t *testing.T) {
	rec := &blockingRecognizer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		resp:    &model.RecognitionResult{Status: "success"},
	}
	view := &fakeView{}
	c := NewController(rec, view, nil, zerolog.Nop())
	require.NoError(t, c.SelectFile(File{MIMEType: "image/jpeg", Data: jpeg}))

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-rec.started

	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.SelectFile(File{MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}), ErrBusy)

	close(rec.release)
	require.NoError(t, <-done)
	assert.Equal(t, ResultShown, c.Phase())
	assert.Empty(t, view.alerts)
}
