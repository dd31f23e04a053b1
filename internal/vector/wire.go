package vector

// Request and response bodies of the remote vector service protocol. The server package
// serves the same shapes, so a kensaku process can act as the remote for another one.

// WireVector is a record on the wire.
type WireVector struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata"`
}

// UpsertRequest is the body of POST /upsert.
type UpsertRequest struct {
	Vectors []WireVector `json:"vectors"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Filter          Filter    `json:"filter,omitempty"`
}

// QueryResponse is the body returned by POST /query.
type QueryResponse struct {
	Results []Match `json:"results"`
}

// IDsRequest is the body of POST /fetch and POST /delete.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// FetchResponse is the body returned by POST /fetch.
type FetchResponse struct {
	Vectors []WireVector `json:"vectors"`
}

// InfoResponse is the body returned by GET /info. Either count may be absent.
type InfoResponse struct {
	VectorCount      *float64 `json:"vectorCount,omitempty"`
	TotalVectorCount *float64 `json:"totalVectorCount,omitempty"`
}

// Stats resolves the optional counts; a missing count falls back to the other, then to 0.
func (r InfoResponse) Stats() Stats {
	count, total := r.VectorCount, r.TotalVectorCount
	if count == nil {
		count = total
	}
	if total == nil {
		total = count
	}
	var s Stats
	if count != nil {
		s.Count = int(*count)
	}
	if total != nil {
		s.TotalCount = int(*total)
	}
	return s
}

// NewInfoResponse builds the GET /info body for s.
func NewInfoResponse(s Stats) InfoResponse {
	count, total := float64(s.Count), float64(s.TotalCount)
	return InfoResponse{VectorCount: &count, TotalVectorCount: &total}
}

// ToWire converts a record to its wire form. Nil metadata is sent as an empty object.
func ToWire(r Record) WireVector {
	md := r.Metadata
	if md == nil {
		md = Metadata{}
	}
	return WireVector{ID: r.ID, Vector: r.Values, Metadata: md}
}

// FromWire converts a wire vector to a record.
func FromWire(w WireVector) Record {
	return Record{ID: w.ID, Values: w.Vector, Metadata: w.Metadata}
}
