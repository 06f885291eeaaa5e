package articles

import "time"

// Article is a published blog entry. Content is rich text HTML whose
// embedded media lives under the application's upload directory.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImgPath   string    `json:"img_path,omitempty"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
