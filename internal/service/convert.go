package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        u.ID,
		Username:  u.Username,
		Nome:      u.Nome,
		Sobrenome: u.Sobrenome,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.Format(dateTimeLayout),
	}
}

func toObraResponse(o *model.Obra) dto.ObraResponse {
	return dto.ObraResponse{
		ID:             o.ID,
		Nome:           o.Nome,
		CEI:            o.CEI,
		Construtora:    o.Construtora,
		ValorM2:        o.ValorM2,
		DataInicio:     o.DataInicio.Format(dateLayout),
		DataFim:        o.DataFim.Format(dateLayout),
		TotalGeral:     o.TotalGeral,
		TotalExecutado: o.TotalExecutado,
		TotalPendente:  o.TotalPendente,
		CreatedAt:      o.CreatedAt.Format(dateTimeLayout),
	}
}

func toObraDetailResponse(o *model.Obra) *dto.ObraDetailResponse {
	resp := &dto.ObraDetailResponse{
		ObraResponse: toObraResponse(o),
		Contatos:     make([]dto.ContatoResponse, 0, len(o.Contatos)),
		Torres:       make([]dto.TorreResponse, 0, len(o.Torres)),
	}
	if e := o.Endereco; e != nil {
		resp.Endereco = &dto.EnderecoResponse{
			CEP:         e.CEP,
			Logradouro:  e.Logradouro,
			Numero:      e.Numero,
			Complemento: e.Complemento,
			Bairro:      e.Bairro,
			Cidade:      e.Cidade,
			Estado:      e.Estado,
		}
	}
	for _, c := range o.Contatos {
		resp.Contatos = append(resp.Contatos, dto.ContatoResponse(c))
	}
	for i := range o.Torres {
		t := &o.Torres[i]
		tr := dto.TorreResponse{ID: t.ID, Nome: t.Nome, Pavimentos: make([]dto.PavimentoResponse, 0, len(t.Pavimentos))}
		for j := range t.Pavimentos {
			p := toPavimentoResponse(&t.Pavimentos[j])
			p.TorreNome = t.Nome
			tr.Pavimentos = append(tr.Pavimentos, p)
		}
		resp.Torres = append(resp.Torres, tr)
	}
	return resp
}

func toPavimentoResponse(p *model.Pavimento) dto.PavimentoResponse {
	resp := dto.PavimentoResponse{
		ID:                  p.ID,
		Identificador:       p.Identificador,
		AreaM2:              p.AreaM2,
		ArgamassaM3:         p.ArgamassaM3,
		AreaExecutadaM2:     p.AreaExecutadaM2,
		PercentualExecutado: p.PercentualExecutado,
		EspessuraCM:         p.EspessuraCM,
		DataExecucao:        formatDatePtr(p.DataExecucao),
		Obs:                 p.Obs,
		TorreID:             p.TorreID,
	}
	if p.Torre != nil {
		resp.TorreNome = p.Torre.Nome
	}
	return resp
}

func toIntegranteResponse(i *model.Integrante) dto.IntegranteResponse {
	resp := dto.IntegranteResponse{
		ID:        i.ID,
		Nome:      i.Nome,
		CPF:       i.CPF,
		CreatedAt: i.CreatedAt.Format(dateTimeLayout),
	}
	if i.EquipeID != nil {
		resp.EquipeID = *i.EquipeID
	}
	if i.Equipe != nil {
		resp.EquipeNome = i.Equipe.Nome
	}
	return resp
}

func toEquipeResponse(e *model.Equipe) *dto.EquipeResponse {
	resp := &dto.EquipeResponse{
		ID:             e.ID,
		Nome:           e.Nome,
		ObraID:         e.ObraID,
		QtdIntegrantes: len(e.Integrantes),
		Integrantes:    make([]dto.IntegranteResponse, 0, len(e.Integrantes)),
		CreatedAt:      e.CreatedAt.Format(dateTimeLayout),
	}
	if e.Obra != nil {
		resp.ObraNome = e.Obra.Nome
	}
	for i := range e.Integrantes {
		ir := toIntegranteResponse(&e.Integrantes[i])
		ir.EquipeNome = e.Nome
		resp.Integrantes = append(resp.Integrantes, ir)
	}
	return resp
}

func toAtividadeResponse(a *model.Atividade) dto.AtividadeResponse {
	resp := dto.AtividadeResponse{
		ID:               a.ID,
		Status:           a.Status,
		ObraID:           a.ObraID,
		PavimentoID:      a.PavimentoID,
		UsuarioID:        a.UsuarioID,
		DataExecucao:     a.DataExecucao.Format(dateLayout),
		AreaExecutadaM2:  a.AreaExecutadaM2,
		AreaPreparadaM2:  a.AreaPreparadaM2,
		AditivoM3:        a.AditivoM3,
		AditivoL:         a.AditivoL,
		InicioExpediente: a.InicioExpediente,
		InicioAlmoco:     a.InicioAlmoco,
		FimAlmoco:        a.FimAlmoco,
		FimExpediente:    a.FimExpediente,
		ObsExecucao:      a.ObsExecucao,
		ObsPonto:         a.ObsPonto,
		ObsQtdBetoneira:  a.ObsQtdBetoneira,
		ObsHOI:           a.ObsHOI,
		SaldoAcumuladoM2: a.SaldoAcumuladoM2,
		Integrantes:      make([]dto.AtividadeIntegranteResponse, 0, len(a.Integrantes)),
		CreatedAt:        a.CreatedAt.Format(dateTimeLayout),
	}
	if a.Obra != nil {
		resp.ObraNome = a.Obra.Nome
	}
	if p := a.Pavimento; p != nil {
		resp.PavimentoNome = p.Identificador
		// percent achieved by this entry, not the floor's current value
		if a.AreaExecutadaM2.Valid && p.AreaM2.IsPositive() {
			resp.PercentualExecutado = decimal.NewNullDecimal(a.AreaExecutadaM2.Decimal.Div(p.AreaM2).Mul(decimal.NewFromInt(100)).Round(2))
		}
		if p.Torre != nil {
			resp.TorreNome = p.Torre.Nome
		}
	}
	if a.Usuario != nil {
		resp.UsuarioNome = a.Usuario.Nome
	}
	for _, ai := range a.Integrantes {
		r := dto.AtividadeIntegranteResponse{ID: ai.IntegranteID, ProducaoM2: ai.ProducaoM2}
		if ai.Integrante != nil {
			r.Nome = ai.Integrante.Nome
		}
		resp.Integrantes = append(resp.Integrantes, r)
	}
	return resp
}
