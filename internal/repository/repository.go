package repository

// ListOptions selects between "all rows" and paginated retrieval.
// Paginate=false returns everything; otherwise Page is 1-based and
// PerPage defaults to 10.
type ListOptions struct {
	Paginate bool
	Page     int
	PerPage  int
}

func (o ListOptions) limits() (offset, limit int) {
	per := o.PerPage
	if per <= 0 {
		per = 10
	}
	page := o.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * per, per
}
