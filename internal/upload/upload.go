package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// MaxImageSize — лимит на размер загружаемого изображения, 6 MB как в исходном API.
const MaxImageSize = 6 << 20

var ErrNoFile = errors.New("no file uploaded")

// Store сохраняет загруженное изображение и возвращает имя файла,
// под которым оно будет отдаваться из /uploads/.
type Store interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

type diskStore struct {
	dir string
}

func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// Save пишет файл на диск под именем image_<наносекунды><расширение>
func (s *diskStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	name := fmt.Sprintf("image_%d%s", time.Now().UnixNano(), ext)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return name, nil
}
