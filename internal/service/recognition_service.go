package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ChlorophyllA/skin2/internal/adapter"
	"github.com/ChlorophyllA/skin2/internal/apperrors"
	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/model"
)

// UploadURLPrefix is where saved uploads are served from.
const UploadURLPrefix = "/static/uploads/"

// RecognitionService stores an uploaded image and runs it through the detector.
type RecognitionService interface {
	Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error)
}

type recognitionServiceImpl struct {
	recognizer adapter.Recognizer
	catalog    *disease.Catalog
	uploadDir  string
}

func NewRecognitionService(rec adapter.Recognizer, catalog *disease.Catalog, uploadDir string) RecognitionService {
	if catalog == nil {
		catalog = disease.Default()
	}
	return &recognitionServiceImpl{recognizer: rec, catalog: catalog, uploadDir: uploadDir}
}

func (s *recognitionServiceImpl) Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error) {
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ".jpg"
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, apperrors.NewInternalError("prepare upload dir", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), image, 0o644); err != nil {
		return nil, apperrors.NewInternalError("save upload", err)
	}

	pred, err := s.recognizer.Predict(ctx, name, image)
	if err != nil {
		return nil, apperrors.NewExternalError("recognizer", err)
	}

	dets := append([]model.Detection{}, pred.Detections...)
	sort.SliceStable(dets, func(i, j int) bool { return dets[i].Confidence > dets[j].Confidence })

	res := &model.RecognitionResult{
		Status:         "success",
		OriginalImage:  UploadURLPrefix + name,
		AnnotatedImage: pred.AnnotatedImage,
		Detections:     dets,
	}
	if len(dets) > 0 {
		if info, ok := s.catalog.Lookup(dets[0].ClassName); ok {
			res.DiseaseInfo = &info
		}
	}
	return res, nil
}
