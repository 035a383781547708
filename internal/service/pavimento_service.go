package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/repository"
)

var (
	ErrPavimentoNotFound   = errors.New("pavimento não encontrado")
	ErrPavimentoForaDaObra = errors.New("o pavimento não pertence à obra informada")
)

const qrCodeSize = 256

// PavimentoService floors.
type PavimentoService interface {
	GetByID(ctx context.Context, id string) (*dto.PavimentoResponse, error)
	// QRCode renders a PNG that opens the activity form preset to the floor.
	QRCode(ctx context.Context, id string) ([]byte, error)
}

type pavimentoService struct {
	repo        *repository.Repository
	frontendURL string
	logger      *zap.Logger
}

// NewPavimentoService creates a PavimentoService.
func NewPavimentoService(repo *repository.Repository, frontendURL string, logger *zap.Logger) PavimentoService {
	return &pavimentoService{repo: repo, frontendURL: strings.TrimRight(frontendURL, "/"), logger: logger}
}

func (s *pavimentoService) GetByID(ctx context.Context, id string) (*dto.PavimentoResponse, error) {
	p, err := s.repo.Pavimento.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPavimentoNotFound
		}
		s.logger.Error("falha ao buscar pavimento", zap.Error(err))
		return nil, err
	}
	resp := toPavimentoResponse(p)
	return &resp, nil
}

func (s *pavimentoService) QRCode(ctx context.Context, id string) ([]byte, error) {
	p, err := s.repo.Pavimento.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPavimentoNotFound
		}
		s.logger.Error("falha ao buscar pavimento", zap.Error(err))
		return nil, err
	}

	q := url.Values{}
	q.Set("pavimento", p.ID)
	if p.Torre != nil {
		q.Set("obra", p.Torre.ObraID)
	}
	link := fmt.Sprintf("%s/atividades/nova?%s", s.frontendURL, q.Encode())

	png, err := qrcode.Encode(link, qrcode.Medium, qrCodeSize)
	if err != nil {
		s.logger.Error("falha ao gerar QR code", zap.String("pavimento_id", id), zap.Error(err))
		return nil, err
	}
	return png, nil
}
