package media

import "bytes"

// Buffer holds a fully-downloaded media object in memory. The same bytes are
// read more than once along the pipeline (transcription first, blob upload
// after), so consumers must not share a read cursor: Reader hands out an
// independent reader positioned at the start every time.
type Buffer struct {
	data        []byte
	contentType string
}

// NewBuffer wraps downloaded bytes with their content type.
func NewBuffer(data []byte, contentType string) *Buffer {
	if contentType == "" {
		contentType = "video/mp4"
	}
	return &Buffer{data: data, contentType: contentType}
}

// Reader returns a fresh reader over the whole buffer.
func (b *Buffer) Reader() *bytes.Reader {
	return bytes.NewReader(b.data)
}

// Len returns the buffered size in bytes.
func (b *Buffer) Len() int64 {
	return int64(len(b.data))
}

// ContentType returns the media content type.
func (b *Buffer) ContentType() string {
	return b.contentType
}
