package uploads

import "time"

// File is an uploaded file held by the store.
type File struct {
	ID        string
	Name      string
	MimeType  string
	Data      []byte
	CreatedAt time.Time
}

// Size is the stored byte length.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Summary describes a stored file without its bytes.
type Summary struct {
	ID        string
	Name      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}

func (f File) summary() Summary {
	return Summary{
		ID:        f.ID,
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size(),
		CreatedAt: f.CreatedAt,
	}
}
