// internal/webutil/query.go
package webutil

import (
	"net/http"
	"strconv"

	"studyflow/internal/model"
)

// ParseListParams はクエリ文字列からコレクション取得パラメータを組み立てます。
// filterKeys に挙げたパラメータだけを等値フィルタとして拾う。
func ParseListParams(r *http.Request, filterKeys ...string) model.ListParams {
	q := r.URL.Query()

	filters := make(map[string]string)
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}

	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	return model.ListParams{
		Filters:  filters,
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Page:     page,
	}
}
