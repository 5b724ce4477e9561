// internal/model/listing.go
package model

// ListParams はコレクション取得時の絞り込み・検索・並び替え・ページ指定です。
// 許可フィールドの判定はリポジトリ側の設定で行う。
type ListParams struct {
	Filters  map[string]string // クエリパラメータ名 -> 値 (等値フィルタ)
	Search   string            // 全文検索語
	Ordering string            // 並び替えフィールド。"-" 接頭辞で降順
	Page     int               // 1始まり
	PageSize int               // 0 の場合はリポジトリのデフォルト
}

// ListResult はページ付きコレクションのレスポンスです
type ListResult[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}
