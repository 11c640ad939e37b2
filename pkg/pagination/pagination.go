package pagination

// Params holds normalized pagination parameters.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Skip  int `json:"-"`
}

// New normalizes page and limit into pagination parameters. Values below 1
// fall back to page 1 and a limit of 10. No maximum is enforced here; limit
// clamping is a policy decision made by the caller.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return Params{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// Result wraps a page of data with pagination metadata.
type Result[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewResult creates a paginated result from a page of data and the total
// matching row count. A page past the end yields an empty data page with
// HasNext false and HasPrev true when page > 1. Params that did not go
// through New are normalized first, so a zero Limit cannot divide by zero.
func NewResult[T any](data []T, total int64, params Params) Result[T] {
	if params.Limit < 1 || params.Page < 1 {
		params = New(params.Page, params.Limit)
	}

	totalPages := int(total / int64(params.Limit))
	if total%int64(params.Limit) > 0 {
		totalPages++
	}

	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
