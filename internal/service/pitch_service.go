package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pitchbot/internal/database"
	"pitchbot/internal/domain"
	"pitchbot/internal/events"
	"pitchbot/internal/models"
)

// PitchService implements domain.PitchManager: persistence, PDF rendering
// and admin fanout for pitch requests.
type PitchService struct {
	store    domain.PitchStore
	tg       domain.TelegramService
	renderer domain.DocumentRenderer
	events   domain.EventPublisher
	admins   []int64
	pdfDir   string
	logger   *zerolog.Logger
}

func NewPitchService(
	store domain.PitchStore,
	tg domain.TelegramService,
	renderer domain.DocumentRenderer,
	publisher domain.EventPublisher,
	admins []int64,
	pdfDir string,
	logger *zerolog.Logger,
) *PitchService {
	l := logger.With().Str("component", "pitch_service").Logger()
	return &PitchService{
		store:    store,
		tg:       tg,
		renderer: renderer,
		events:   publisher,
		admins:   admins,
		pdfDir:   pdfDir,
		logger:   &l,
	}
}

// Submit persists the request, renders the PDF and notifies admins.
// Only the insert is fatal; rendering and delivery are best-effort.
func (s *PitchService) Submit(ctx context.Context, req *models.PitchRequest) (*models.PitchRequest, error) {
	id, err := s.store.CreatePitchRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create pitch request: %w", err)
	}

	if err := s.events.PublishJSON(ctx, events.EventPitchCreated, events.PitchEventPayload{
		RequestID:  id,
		TelegramID: req.TelegramID,
		Status:     req.Status,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("request_id", id).Msg("не удалось опубликовать событие")
	}

	pdfBytes := s.renderPDF(ctx, req)
	s.notifyAdmins(req, pdfBytes)

	return req, nil
}

func (s *PitchService) renderPDF(ctx context.Context, req *models.PitchRequest) []byte {
	data, err := s.renderer.Render(req)
	if err != nil {
		s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("не удалось сгенерировать PDF")
		return nil
	}

	if err := os.MkdirAll(s.pdfDir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.pdfDir).Msg("не удалось создать каталог PDF")
		return data
	}

	path := filepath.Join(s.pdfDir, PDFFilename(req.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("не удалось сохранить PDF")
		return data
	}

	if err := s.store.SetPitchRequestPDFPath(ctx, req.ID, path); err != nil {
		s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("не удалось сохранить путь к PDF")
		return data
	}

	req.PDFPath = path
	return data
}

func (s *PitchService) notifyAdmins(req *models.PitchRequest, pdfBytes []byte) {
	from := req.Username
	if from == "" {
		from = fmt.Sprintf("id:%d", req.TelegramID)
	}

	text := fmt.Sprintf(
		"🆕 <b>Новая заявка на питчинг №%d</b>\nАртист — релиз: %s\nОт: %s",
		req.ID, req.ReleaseArtist, from)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📂 Открыть заявку",
				fmt.Sprintf("%s%d", models.CallbackAdminOpenPrefix, req.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Все заявки",
				models.CallbackAdminListPrefix+"0"),
		),
	)

	for _, adminID := range s.admins {
		if err := s.tg.SendHTMLWithInlineKeyboard(adminID, text, keyboard); err != nil {
			s.logger.Error().Err(err).
				Int64("admin_id", adminID).
				Int64("request_id", req.ID).
				Msg("не удалось уведомить администратора")
			continue
		}

		if pdfBytes == nil {
			continue
		}
		caption := fmt.Sprintf("PDF заявки №%d", req.ID)
		if err := s.tg.SendDocument(adminID, PDFFilename(req.ID), pdfBytes, caption); err != nil {
			s.logger.Error().Err(err).
				Int64("admin_id", adminID).
				Int64("request_id", req.ID).
				Msg("не удалось отправить PDF администратору")
		}
	}
}

// Get returns the request when the requester owns it or is an admin.
// A foreign request is reported as not found, not as forbidden.
func (s *PitchService) Get(ctx context.Context, id, requesterID int64, admin bool) (*models.PitchRequest, error) {
	req, err := s.store.GetPitchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && req.TelegramID != requesterID {
		return nil, database.ErrNotFound
	}
	return req, nil
}

func (s *PitchService) Delete(ctx context.Context, id, requesterID int64, admin bool) error {
	ownerID := requesterID
	if admin {
		ownerID = 0
	}
	if err := s.store.DeletePitchRequest(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.events.PublishJSON(ctx, events.EventPitchDeleted, events.PitchEventPayload{
		RequestID:  id,
		TelegramID: requesterID,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("request_id", id).Msg("не удалось опубликовать событие")
	}
	return nil
}

// MarkViewed moves a fresh request to viewed; requests already past that
// status are left alone.
func (s *PitchService) MarkViewed(ctx context.Context, id int64) error {
	req, err := s.store.GetPitchRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != models.StatusNew {
		return nil
	}
	if err := s.store.SetPitchRequestStatus(ctx, id, models.StatusViewed); err != nil {
		return err
	}
	return s.events.PublishJSON(ctx, events.EventPitchStatusChanged, events.PitchEventPayload{
		RequestID: id,
		Status:    models.StatusViewed,
	})
}

func (s *PitchService) MarkDone(ctx context.Context, id int64) error {
	if err := s.store.SetPitchRequestStatus(ctx, id, models.StatusDone); err != nil {
		return err
	}
	return s.events.PublishJSON(ctx, events.EventPitchStatusChanged, events.PitchEventPayload{
		RequestID: id,
		Status:    models.StatusDone,
	})
}

func (s *PitchService) CountUser(ctx context.Context, telegramID int64) (int, error) {
	return s.store.CountUserPitchRequests(ctx, telegramID)
}

func (s *PitchService) ListUser(ctx context.Context, telegramID int64, limit, offset int) ([]models.PitchRequest, error) {
	return s.store.ListUserPitchRequests(ctx, telegramID, limit, offset)
}

func (s *PitchService) CountAll(ctx context.Context) (int, error) {
	return s.store.CountPitchRequests(ctx)
}

func (s *PitchService) ListAll(ctx context.Context, limit, offset int) ([]models.PitchRequest, error) {
	return s.store.ListPitchRequests(ctx, limit, offset)
}

// PDFFilename is the canonical on-disk and attachment name for a request.
func PDFFilename(id int64) string {
	return fmt.Sprintf("pitching_request_%d.pdf", id)
}
