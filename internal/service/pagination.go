package service

// DefaultPageSize is used when a listing asks for fewer than one row per page.
const DefaultPageSize = 10

// NormalizePageSize falls back to def for sizes below one. A positive max caps
// the size; max <= 0 leaves it unbounded.
func NormalizePageSize(size, def, max int) int {
	if size < 1 {
		size = def
	}
	if max > 0 && size > max {
		size = max
	}
	return size
}

// TotalPages returns ceil(totalItems / pageSize).
func TotalPages(totalItems int64, pageSize int) int {
	if totalItems <= 0 || pageSize < 1 {
		return 0
	}
	size := int64(pageSize)
	return int((totalItems + size - 1) / size)
}

// ClampPage keeps page within [1, totalPages]. With no pages at all it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Offset returns the row offset of a one-based page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}
