// Package model holds the JSON shapes exchanged between the portal server and
// its clients.
package model

import "github.com/ChlorophyllA/skin2/internal/disease"

// PageSize is the fixed number of hospitals per search page.
const PageSize = 10

// Hospital is one row of the hospital directory. Every field is optional text.
type Hospital struct {
	Hospital      string `json:"hospital"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Level         string `json:"level"`
	Departments   string `json:"departments"`
	OperationMode string `json:"operation_mode"`
	Email         string `json:"email"`
	Website       string `json:"website"`
}

// SearchQuery is the body of POST /api/search.
type SearchQuery struct {
	Province    string `json:"province"`
	City        string `json:"city"`
	Level       string `json:"level"`
	Departments string `json:"departments"`
	Page        int    `json:"page"`
}

type SearchResult struct {
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Results []Hospital `json:"results"`
}

// Detection is one lesion found by the recognizer.
type Detection struct {
	ClassID    int       `json:"class_id"`
	ClassName  string    `json:"class_name"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox,omitempty"`
}

// RecognitionResult is the body returned by POST /recognize. Detections are
// ordered by descending confidence.
type RecognitionResult struct {
	Status         string        `json:"status"`
	OriginalImage  string        `json:"original_image,omitempty"`
	AnnotatedImage string        `json:"annotated_image,omitempty"`
	Detections     []Detection   `json:"detections"`
	DiseaseInfo    *disease.Info `json:"disease_info,omitempty"`
}

// SkinDisease is one encyclopedia entry.
type SkinDisease struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Alias       string `json:"alias"`
	Category    string `json:"category"`
	Symptoms    string `json:"symptoms"`
	Causes      string `json:"causes"`
	Treatment   string `json:"treatment"`
	Prevention  string `json:"prevention"`
	Department  string `json:"department"`
	Contagious  string `json:"contagious"`
	Description string `json:"description"`
}

type SkinPage struct {
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Results []SkinDisease `json:"results"`
}

// ChatMessage is one turn of a consultation. Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
