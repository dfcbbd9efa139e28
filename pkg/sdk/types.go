package sdk

// Source is a legal citation attached to an answer.
type Source struct {
	Domain    string  `json:"domain"`
	Reference string  `json:"reference"`
	Score     float64 `json:"score"`
}

// ChatResult is the synchronous answer payload.
type ChatResult struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

// HealthStatus is the health check payload. DocumentsCount is nil when the
// server could not count the corpus.
type HealthStatus struct {
	Status         string `json:"status"`
	DocumentsCount *int   `json:"documents_count"`
}

// Stats is the corpus statistics payload.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	Status         string `json:"status"`
	Detail         string `json:"detail,omitempty"`
}

// StreamHandler receives streaming chat events. OnSources is called exactly
// once before any OnContent call; OnContent is called once per generated
// fragment, in order.
type StreamHandler interface {
	OnSources(sources []Source) error
	OnContent(fragment string) error
}

// HandlerFuncs adapts plain functions to StreamHandler. Nil funcs are no-ops.
type HandlerFuncs struct {
	SourcesFunc func(sources []Source) error
	ContentFunc func(fragment string) error
}

func (h HandlerFuncs) OnSources(sources []Source) error {
	if h.SourcesFunc == nil {
		return nil
	}
	return h.SourcesFunc(sources)
}

func (h HandlerFuncs) OnContent(fragment string) error {
	if h.ContentFunc == nil {
		return nil
	}
	return h.ContentFunc(fragment)
}
