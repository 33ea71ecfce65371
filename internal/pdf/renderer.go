package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"pitchbot/internal/models"
)

// Renderer renders a pitch request into an A4 PDF document. Core fonts
// with a cp1251 translator keep the binary free of bundled font files.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

type block struct {
	label string
	value string
}

func (r *Renderer) Render(req *models.PitchRequest) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("cp1251")
	doc.SetTitle(tr(fmt.Sprintf("Заявка на питчинг №%d", req.ID)), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr("Заявка на питчинг"), "", 1, "C", false, 0, "")
	doc.Ln(2)

	from := req.Username
	if from == "" {
		from = fmt.Sprintf("id:%d", req.TelegramID)
	}

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Номер заявки: %d", req.ID)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, tr("Дата: "+req.CreatedAt.Format("02.01.2006 15:04")), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, tr("Отправитель: "+from), "", 1, "L", false, 0, "")
	doc.Ln(4)

	blocks := []block{
		{"Артист — название релиза", req.ReleaseArtist},
		{"Описание релиза", req.Description},
		{"Ссылка на фото и обложку", req.PhotosLink},
		{"Ссылка на прослушивание", req.ListenLink},
		{"Ссылка на клип", req.ClipLink},
		{"Соцсети артиста", req.Socials},
		{"Дополнительно", req.Extra},
	}

	for _, b := range blocks {
		value := b.value
		if value == "" {
			value = "—"
		}
		doc.SetFont("Helvetica", "B", 11)
		doc.MultiCell(0, 6, tr(b.label), "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(value), "", "L", false)
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
