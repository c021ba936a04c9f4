package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChlorophyllA/skin2/internal/model"
)

type mockRecognition struct {
	got []byte
	res *model.RecognitionResult
	err error
}

func (m *mockRecognition) Recognize(_ context.Context, image []byte) (*model.RecognitionResult, error) {
	m.got = image
	return m.res, m.err
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, _ = fw.Write(data)
	} else {
		require.NoError(t, mw.WriteField(field, ""))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newRecognitionRouter(svc *mockRecognition) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRecognitionRoutes(r, svc, zerolog.Nop())
	return r
}

func TestRecognize_Success(t *testing.T) {
	svc := &mockRecognition{res: &model.RecognitionResult{
		Status:        "success",
		OriginalImage: "/static/uploads/abc.jpg",
		Detections:    []model.Detection{{ClassName: "MEL", Confidence: 0.9}},
	}}
	body, ct := multipartBody(t, "image", "skin_image.jpg", []byte{0xFF, 0xD8})
	req := httptest.NewRequest(http.MethodPost, "/recognize", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	newRecognitionRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte{0xFF, 0xD8}, svc.got)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
	assert.Contains(t, w.Body.String(), `"class_name":"MEL"`)
}

func TestRecognize_MissingImage(t *testing.T) {
	body, ct := multipartBody(t, "other", "x.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/recognize", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	newRecognitionRouter(&mockRecognition{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"未上传图片"}`, w.Body.String())
}

func TestRecognize_EmptyFilename(t *testing.T) {
	body, ct := multipartBody(t, "image", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/recognize", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	newRecognitionRouter(&mockRecognition{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"未选择文件"}`, w.Body.String())
}

func TestRecognize_ServiceError(t *testing.T) {
	body, ct := multipartBody(t, "image", "a.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/recognize", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	newRecognitionRouter(&mockRecognition{err: errors.New("503")}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"处理图像时发生错误"}`, w.Body.String())
}
