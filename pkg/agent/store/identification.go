package store

// Field names a correctable scalar of an identification result.
type Field string

const (
	FieldProducer Field = "producer"
	FieldWineName Field = "wine_name"
	FieldVintage  Field = "vintage"
	FieldRegion   Field = "region"
	FieldCountry  Field = "country"
	FieldWineType Field = "wine_type"
)

// ScalarFields lists the correctable scalars in display order. Grape
// varieties are a list, not a scalar, so they are excluded from
// field-correction affordances.
var ScalarFields = []Field{
	FieldProducer, FieldWineName, FieldVintage,
	FieldRegion, FieldCountry, FieldWineType,
}

// FieldDetail is a pseudo-field used while prompting for free-form
// supplementary detail. It is not a result scalar and never appears in
// ScalarFields.
const FieldDetail Field = "detail"

// NonVintage is the sentinel vintage for wines carrying no year.
const NonVintage = "NV"

// IdentificationResult holds the fields extracted for one wine. Empty
// string means the field was not identified. Confidence is 0..100.
type IdentificationResult struct {
	Producer       string   `json:"producer,omitempty"`
	WineName       string   `json:"wine_name,omitempty"`
	Vintage        string   `json:"vintage,omitempty"`
	Region         string   `json:"region,omitempty"`
	Country        string   `json:"country,omitempty"`
	WineType       string   `json:"wine_type,omitempty"`
	GrapeVarieties []string `json:"grape_varieties,omitempty"`
	Confidence     float64  `json:"confidence"`
}

// Get reads a scalar field by name.
func (r *IdentificationResult) Get(f Field) string {
	switch f {
	case FieldProducer:
		return r.Producer
	case FieldWineName:
		return r.WineName
	case FieldVintage:
		return r.Vintage
	case FieldRegion:
		return r.Region
	case FieldCountry:
		return r.Country
	case FieldWineType:
		return r.WineType
	}
	return ""
}

func (r *IdentificationResult) set(f Field, v string) {
	switch f {
	case FieldProducer:
		r.Producer = v
	case FieldWineName:
		r.WineName = v
	case FieldVintage:
		r.Vintage = v
	case FieldRegion:
		r.Region = v
	case FieldCountry:
		r.Country = v
	case FieldWineType:
		r.WineType = v
	}
}

// Clone returns a deep copy.
func (r *IdentificationResult) Clone() *IdentificationResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.GrapeVarieties = append([]string(nil), r.GrapeVarieties...)
	return &cp
}

// Empty reports whether nothing at all was identified.
func (r *IdentificationResult) Empty() bool {
	if r == nil {
		return true
	}
	return r.Producer == "" && r.WineName == "" && r.Vintage == "" &&
		r.Region == "" && r.Country == "" && r.WineType == "" &&
		len(r.GrapeVarieties) == 0
}

// IdentificationStore holds the last identification result, per-request
// streaming state, locked fields, escalation tier and the pending
// text/image context used to enrich a retry.
type IdentificationStore struct {
	result     *IdentificationResult
	preStream  *IdentificationResult // result as of BeginRequest, restored on cancel
	locked     map[Field]bool
	tier       int
	generation uint64
	streaming  bool

	promptedField Field
	pendingText   string
	pendingImage  string
	augmentation  []string
}

func NewIdentificationStore() *IdentificationStore {
	return &IdentificationStore{locked: make(map[Field]bool)}
}

// BeginRequest starts a new streaming identification attempt and returns
// its generation. Partials carrying any other generation are discarded,
// which is what keeps two requests' streams from intermixing.
func (s *IdentificationStore) BeginRequest() uint64 {
	s.generation++
	s.streaming = true
	s.preStream = s.result.Clone()
	if s.result == nil {
		s.result = &IdentificationResult{}
	}
	return s.generation
}

// Generation returns the latest started request's generation.
func (s *IdentificationStore) Generation() uint64 {
	return s.generation
}

// Streaming reports whether a request is in flight. Never persisted.
func (s *IdentificationStore) Streaming() bool {
	return s.streaming
}

// ApplyPartial merges one streamed field value. Stale generations and
// locked fields are refused.
func (s *IdentificationStore) ApplyPartial(gen uint64, f Field, value string) bool {
	if gen != s.generation || !s.streaming {
		return false
	}
	if s.locked[f] {
		return false
	}
	if s.result == nil {
		s.result = &IdentificationResult{}
	}
	s.result.set(f, value)
	return true
}

// Complete installs the final result of a request, superseding all its
// partials. Locked field values are forcibly re-applied over whatever
// the automated result carried.
func (s *IdentificationStore) Complete(gen uint64, final *IdentificationResult) bool {
	if gen != s.generation {
		return false
	}
	merged := final.Clone()
	if prev := s.result; prev != nil {
		for f := range s.locked {
			merged.set(f, prev.Get(f))
		}
	}
	s.result = merged
	s.preStream = nil
	s.streaming = false
	return true
}

// CancelRequest stops the current stream and discards its partials,
// restoring whatever result preceded the request. A result only holds
// the cancelled request's own fragments until Complete lands, so those
// never survive as a usable result. Later events from the request
// become stale by generation bump.
func (s *IdentificationStore) CancelRequest() {
	s.generation++
	if s.streaming {
		s.result = s.preStream
		s.preStream = nil
		s.streaming = false
	}
}

// Result returns a copy of the last result, or nil.
func (s *IdentificationStore) Result() *IdentificationResult {
	return s.result.Clone()
}

// HasResult reports whether an identification result exists.
func (s *IdentificationStore) HasResult() bool {
	return s.result != nil && !s.result.Empty()
}

// SetField applies an explicit user correction and locks the field. Only
// a fresh user correction may overwrite a locked value, which this is.
func (s *IdentificationStore) SetField(f Field, value string) {
	if s.result == nil {
		s.result = &IdentificationResult{}
	}
	s.result.set(f, value)
	s.locked[f] = true
}

// Locked reports whether a field was explicitly corrected by the user.
func (s *IdentificationStore) Locked(f Field) bool {
	return s.locked[f]
}

// LockedFields returns the locked field names.
func (s *IdentificationStore) LockedFields() []Field {
	out := make([]Field, 0, len(s.locked))
	for _, f := range ScalarFields {
		if s.locked[f] {
			out = append(out, f)
		}
	}
	return out
}

// LockedValues returns a field→value map of the locked fields, for
// forwarding to escalated requests.
func (s *IdentificationStore) LockedValues() map[Field]string {
	out := make(map[Field]string, len(s.locked))
	if s.result == nil {
		return out
	}
	for f := range s.locked {
		out[f] = s.result.Get(f)
	}
	return out
}

func (s *IdentificationStore) Tier() int     { return s.tier }
func (s *IdentificationStore) SetTier(t int) { s.tier = t }
func (s *IdentificationStore) BumpTier() int { s.tier++; return s.tier }

// PromptedField is the field currently being collected in the
// missing-field loop, if any.
func (s *IdentificationStore) PromptedField() Field {
	return s.promptedField
}

func (s *IdentificationStore) SetPromptedField(f Field) {
	s.promptedField = f
}

func (s *IdentificationStore) PendingText() string        { return s.pendingText }
func (s *IdentificationStore) SetPendingText(t string)    { s.pendingText = t }
func (s *IdentificationStore) PendingImage() string       { return s.pendingImage }
func (s *IdentificationStore) SetPendingImage(ref string) { s.pendingImage = ref }

// AppendAugmentation accumulates supplementary evidence for retries.
// Append-only within one identification attempt.
func (s *IdentificationStore) AppendAugmentation(detail string) {
	if detail != "" {
		s.augmentation = append(s.augmentation, detail)
	}
}

func (s *IdentificationStore) Augmentation() []string {
	return append([]string(nil), s.augmentation...)
}

// Reset clears everything; used by start_over.
func (s *IdentificationStore) Reset() {
	s.result = nil
	s.preStream = nil
	s.locked = make(map[Field]bool)
	s.tier = 0
	s.generation++
	s.streaming = false
	s.promptedField = ""
	s.pendingText = ""
	s.pendingImage = ""
	s.augmentation = nil
}
