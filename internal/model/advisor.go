package model

// RefineRequest asks the advisor to polish a job draft.
type RefineRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RefineResponse carries the polished draft. When Refined is false the
// original title and description are echoed back.
type RefineResponse struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	SuggestedPriceRange string `json:"suggestedPriceRange,omitempty"`
	Refined             bool   `json:"refined"`
}

// AdviceRequest asks for tips about a job description.
type AdviceRequest struct {
	Description string `json:"description"`
}

// AdviceResponse carries advice text. Fallback marks the static tip.
type AdviceResponse struct {
	Advice   string `json:"advice"`
	Fallback bool   `json:"fallback"`
}
