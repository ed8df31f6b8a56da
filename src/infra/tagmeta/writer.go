package tagmeta

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// Writer writes title/artist tags and embedded covers into MP3 and FLAC
// files.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes the metadata into the file. Unsupported formats are
// skipped with a warning rather than failing the operation that triggered
// the write.
func (w *Writer) WriteFile(path string, meta *Meta) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return w.writeMP3(path, meta)
	case ".flac":
		return w.writeFLAC(path, meta)
	default:
		slog.Warn("Unsupported audio format for tag writing", "path", path)
		return nil
	}
}

func (w *Writer) writeMP3(path string, meta *Meta) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(meta.Title)
	tag.SetArtist(meta.Artist)

	if len(meta.CoverData) > 0 {
		mimeType := meta.CoverMIME
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    mimeType,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     meta.CoverData,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	slog.Debug("Tagged MP3 file", "path", path, "title", meta.Title)
	return nil
}

func (w *Writer) writeFLAC(path string, meta *Meta) error {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var vorbisComment *flacvorbis.MetaDataBlockVorbisComment
	commentIndex := -1
	for idx, block := range f.Meta {
		if block.Type == goflac.VorbisComment {
			vorbisComment, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}
	if vorbisComment == nil {
		vorbisComment = flacvorbis.New()
	}

	setVorbisField(vorbisComment, flacvorbis.FIELD_TITLE, meta.Title)
	setVorbisField(vorbisComment, flacvorbis.FIELD_ARTIST, meta.Artist)

	commentMeta := vorbisComment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if len(meta.CoverData) > 0 {
		mimeType := meta.CoverMIME
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", meta.CoverData, mimeType)
		if err != nil {
			return fmt.Errorf("failed to build FLAC picture block: %w", err)
		}
		marshaled := pic.Marshal()

		// Replace any existing picture block.
		kept := f.Meta[:0]
		for _, block := range f.Meta {
			if block.Type != goflac.Picture {
				kept = append(kept, block)
			}
		}
		f.Meta = append(kept, &goflac.MetaDataBlock{Type: goflac.Picture, Data: marshaled.Data})
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	slog.Debug("Tagged FLAC file", "path", path, "title", meta.Title)
	return nil
}

// setVorbisField replaces a field's values, since Add appends duplicates.
func setVorbisField(vc *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	if value == "" {
		return
	}
	var kept []string
	prefix := strings.ToUpper(field) + "="
	for _, comment := range vc.Comments {
		if !strings.HasPrefix(strings.ToUpper(comment), prefix) {
			kept = append(kept, comment)
		}
	}
	vc.Comments = kept
	vc.Add(field, value)
}
