package uploadui

import (
	"fmt"
	"math"

	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/model"
)

const annotatedPrefix = "data:image/png;base64,"

// ResultView is what the result panel shows.
type ResultView struct {
	ImageSrc    string
	DiseaseName string
	Confidence  string
	Probability string
	Description string
	Advice      string
}

// Placeholder is the result panel before anything was recognized.
func Placeholder() ResultView {
	return ResultView{
		DiseaseName: "未识别",
		Confidence:  "0%",
		Probability: "--",
		Description: "--",
		Advice:      "--",
	}
}

// ProbabilityBand buckets a confidence in [0,1].
func ProbabilityBand(c float64) string {
	switch {
	case c > 0.8:
		return "非常高"
	case c > 0.6:
		return "高"
	case c > 0.4:
		return "中等"
	default:
		return "低"
	}
}

// FormatConfidence renders c as a rounded percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(c*100)))
}

// BuildResult decides the result panel for a recognition response. preview is
// the data URL of the uploaded image, shown when no annotated image came back.
func BuildResult(resp *model.RecognitionResult, preview string, catalog *disease.Catalog) ResultView {
	v := ResultView{ImageSrc: preview}
	if resp == nil {
		resp = &model.RecognitionResult{}
	}
	if resp.AnnotatedImage != "" {
		v.ImageSrc = annotatedPrefix + resp.AnnotatedImage
	}

	if len(resp.Detections) == 0 {
		v.DiseaseName = "未发现皮肤病"
		v.Confidence = "0%"
		v.Probability = "低"
		v.Description = "未在图片中检测到明显的皮肤病症状"
		v.Advice = "如有疑虑，请咨询专业医生"
		return v
	}

	top := resp.Detections[0]
	v.DiseaseName = top.ClassName
	v.Confidence = FormatConfidence(top.Confidence)
	v.Probability = ProbabilityBand(top.Confidence)
	v.Description = catalog.PanelDescription(top.ClassName)
	v.Advice = catalog.Advice(top.ClassName)
	return v
}
