package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
)

func validObraRequest() *dto.CreateObraRequest {
	return &dto.CreateObraRequest{
		Nome:        "Residencial Dunas",
		CEI:         "12.345.678/0001-90",
		Construtora: "Construtora Potiguar",
		ValorM2:     decimal.RequireFromString("42.50"),
		DataInicio:  "2026-02-01",
		DataFim:     "2027-02-01",
		Endereco: dto.EnderecoRequest{
			CEP: "59015-000", Logradouro: "Av. Deodoro da Fonseca", Numero: "100",
			Bairro: "Cidade Alta", Cidade: "Natal", Estado: "rn",
		},
		Contatos: []dto.ContatoRequest{{Nome: "Maria", Funcao: "Engenheira"}},
		Torres: []dto.TorreRequest{
			{Nome: "Torre A", Pavimentos: []dto.PavimentoRequest{
				{Identificador: "Térreo", AreaM2: decimal.NewFromInt(150), ArgamassaM3: decimal.NewFromInt(4)},
				{Identificador: "1º andar", AreaM2: decimal.NewFromInt(120), ArgamassaM3: decimal.NewFromInt(3)},
			}},
			{Nome: "Torre B", Pavimentos: []dto.PavimentoRequest{
				{Identificador: "Térreo", AreaM2: decimal.RequireFromString("80.5"), ArgamassaM3: decimal.NewFromInt(2)},
			}},
		},
	}
}

func TestObraService_Create_Totals(t *testing.T) {
	m := newMockRepos()
	svc := NewObraService(m.repo, zap.NewNop())

	resp, err := svc.Create(context.Background(), validObraRequest(), "usr-master")
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if !resp.TotalGeral.Equal(decimal.RequireFromString("350.5")) {
		t.Errorf("total geral: want 350.5, got %s", resp.TotalGeral)
	}
	if !resp.TotalExecutado.IsZero() {
		t.Errorf("total executado should start at zero, got %s", resp.TotalExecutado)
	}
	if !resp.TotalPendente.Equal(resp.TotalGeral) {
		t.Errorf("total pendente should equal total geral, got %s", resp.TotalPendente)
	}
	if len(resp.Torres) != 2 || len(resp.Torres[0].Pavimentos) != 2 {
		t.Fatalf("unexpected structure: %+v", resp.Torres)
	}
	if resp.Endereco == nil || resp.Endereco.Estado != "RN" {
		t.Errorf("estado should be upper-cased: %+v", resp.Endereco)
	}
	stored := m.obra.obras[resp.ID]
	if stored.CriadoPorID == nil || *stored.CriadoPorID != "usr-master" {
		t.Error("creator not recorded")
	}
}

func TestObraService_Create_DuplicateCEI(t *testing.T) {
	m := newMockRepos()
	svc := NewObraService(m.repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, validObraRequest(), ""); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, validObraRequest(), ""); !errors.Is(err, ErrCEIExists) {
		t.Errorf("want ErrCEIExists, got %v", err)
	}
}

func TestObraService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateObraRequest)
		field  string
	}{
		{"valor zero", func(r *dto.CreateObraRequest) { r.ValorM2 = decimal.Zero }, "valor_m2"},
		{"datas invertidas", func(r *dto.CreateObraRequest) { r.DataFim = "2026-01-01" }, "data_fim"},
		{"torre sem pavimentos", func(r *dto.CreateObraRequest) { r.Torres[1].Pavimentos = nil }, "torres[1].pavimentos"},
		{"area zero", func(r *dto.CreateObraRequest) { r.Torres[0].Pavimentos[1].AreaM2 = decimal.Zero }, "torres[0].pavimentos[1].area_m2"},
		{"argamassa zero", func(r *dto.CreateObraRequest) { r.Torres[0].Pavimentos[0].ArgamassaM3 = decimal.Zero }, "torres[0].pavimentos[0].argamassa_m3"},
		{"cep", func(r *dto.CreateObraRequest) { r.Endereco.CEP = "590150" }, "endereco.cep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockRepos()
			svc := NewObraService(m.repo, zap.NewNop())
			req := validObraRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req, "")
			assertFieldError(t, err, tt.field)
			if len(m.obra.obras) != 0 {
				t.Error("nothing should be persisted")
			}
		})
	}
}

func TestObraService_CEIExists_And_Delete(t *testing.T) {
	m := newMockRepos()
	svc := NewObraService(m.repo, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, validObraRequest(), "")
	if err != nil {
		t.Fatal(err)
	}
	exists, err := svc.CEIExists(ctx, "12.345.678/0001-90")
	if err != nil || !exists {
		t.Errorf("CEI should exist: %v %v", exists, err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrObraNotFound) {
		t.Errorf("second Delete: want ErrObraNotFound, got %v", err)
	}
	exists, _ = svc.CEIExists(ctx, "12.345.678/0001-90")
	if exists {
		t.Error("CEI should be free after delete")
	}
}

func TestObraService_ListPavimentos(t *testing.T) {
	m := newMockRepos()
	m.seedObra("200", "3")
	m.pavimento.add(&model.Pavimento{
		ID: "pav-2", Identificador: "2º andar", AreaM2: decimal.NewFromInt(100), ArgamassaM3: decimal.NewFromInt(2),
		TorreID: "torre-a", Torre: &model.Torre{ID: "torre-a", Nome: "Torre A", ObraID: "obra-1"},
	})
	svc := NewObraService(m.repo, zap.NewNop())

	list, err := svc.ListPavimentos(context.Background(), "obra-1")
	if err != nil {
		t.Fatalf("ListPavimentos failed: %v", err)
	}
	if len(list) != 2 || list[0].TorreNome != "Torre A" {
		t.Errorf("unexpected list: %+v", list)
	}
	if _, err := svc.ListPavimentos(context.Background(), "obra-x"); !errors.Is(err, ErrObraNotFound) {
		t.Errorf("want ErrObraNotFound, got %v", err)
	}
}

func TestTotalsService_RecalculateObra(t *testing.T) {
	m := newMockRepos()
	m.seedObra("200", "3", "int-1")
	if _, err := setupAtividadeOver(m).Create(context.Background(), execReq("50", "int-1"), "usr-1"); err != nil {
		t.Fatal(err)
	}

	svc := NewTotalsService(m.repo, zap.NewNop())
	totals, err := svc.RecalculateObra(context.Background(), "obra-1")
	if err != nil {
		t.Fatalf("RecalculateObra failed: %v", err)
	}
	if !totals.TotalExecutado.Equal(decimal.NewFromInt(50)) || !totals.TotalPendente.Equal(decimal.NewFromInt(150)) {
		t.Errorf("unexpected totals: executado=%s pendente=%s", totals.TotalExecutado, totals.TotalPendente)
	}
	if !m.obra.obras["obra-1"].TotalPendente.Equal(decimal.NewFromInt(150)) {
		t.Error("totals not persisted")
	}

	n, err := svc.RecalculateAll(context.Background())
	if err != nil || n != 1 {
		t.Errorf("RecalculateAll: want 1 updated, got %d (%v)", n, err)
	}
	if _, err := svc.RecalculateObra(context.Background(), "obra-x"); !errors.Is(err, ErrObraNotFound) {
		t.Errorf("want ErrObraNotFound, got %v", err)
	}
}
