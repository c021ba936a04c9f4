// Command skin2-fakerecognizer serves POST /predict with deterministic
// detections so the portal can run without the real inference service.
package main

import (
	"encoding/json"
	"flag"
	"hash/fnv"
	"io"
	"net/http"

	"github.com/ChlorophyllA/skin2/internal/adapter"
	"github.com/ChlorophyllA/skin2/internal/config"
	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/logging"
	"github.com/ChlorophyllA/skin2/internal/model"
)

func main() {
	addr := flag.String("addr", ":5001", "listen address")
	flag.Parse()

	logger := logging.Init("skin2-fakerecognizer", config.Load().Log)
	http.Handle("/predict", predictHandler(disease.Default().Codes()))

	logger.Info().Str("addr", *addr).Msg("fake recognizer running")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("serve")
	}
}

// predictHandler answers with one or two detections chosen from codes by a
// hash of the uploaded bytes. Images smaller than 16 bytes yield none.
func predictHandler(codes []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read image", http.StatusBadRequest)
			return
		}

		resp := adapter.Prediction{Detections: []model.Detection{}}
		if len(data) >= 16 && len(codes) > 0 {
			h := fnv.New32a()
			h.Write(data)
			sum := h.Sum32()
			first := int(sum % uint32(len(codes)))
			resp.Detections = append(resp.Detections, model.Detection{
				ClassID:    first,
				ClassName:  codes[first],
				Confidence: 0.5 + float64(sum%50)/100,
			})
			if len(codes) > 1 {
				second := (first + 1) % len(codes)
				resp.Detections = append(resp.Detections, model.Detection{
					ClassID:    second,
					ClassName:  codes[second],
					Confidence: float64(sum%40) / 100,
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}
