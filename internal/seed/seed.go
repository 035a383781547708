// Package seed loads fixture data from a YAML file and inserts it through the
// service layer, so every record passes the same validation as the API.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/service"
)

// File is the root of a seed document.
type File struct {
	Usuarios []Usuario `yaml:"usuarios"`
	Obras    []Obra    `yaml:"obras"`
}

// Usuario account to create.
type Usuario struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Nome      string `yaml:"nome"`
	Sobrenome string `yaml:"sobrenome"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
}

// Obra with its address, towers and crews.
type Obra struct {
	Nome        string   `yaml:"nome"`
	CEI         string   `yaml:"cei"`
	Construtora string   `yaml:"construtora"`
	ValorM2     string   `yaml:"valor_m2"`
	DataInicio  string   `yaml:"data_inicio"`
	DataFim     string   `yaml:"data_fim"`
	Endereco    Endereco `yaml:"endereco"`
	Torres      []Torre  `yaml:"torres"`
	Equipes     []Equipe `yaml:"equipes"`
}

// Endereco postal address.
type Endereco struct {
	CEP         string `yaml:"cep"`
	Logradouro  string `yaml:"logradouro"`
	Numero      string `yaml:"numero"`
	Complemento string `yaml:"complemento"`
	Bairro      string `yaml:"bairro"`
	Cidade      string `yaml:"cidade"`
	Estado      string `yaml:"estado"`
}

// Torre tower and its floors.
type Torre struct {
	Nome       string      `yaml:"nome"`
	Pavimentos []Pavimento `yaml:"pavimentos"`
}

// Pavimento floor. Decimals are written as strings to keep them exact.
type Pavimento struct {
	Identificador string `yaml:"identificador"`
	AreaM2        string `yaml:"area_m2"`
	ArgamassaM3   string `yaml:"argamassa_m3"`
}

// Equipe crew and its members.
type Equipe struct {
	Nome        string       `yaml:"nome"`
	Integrantes []Integrante `yaml:"integrantes"`
}

// Integrante worker.
type Integrante struct {
	Nome string `yaml:"nome"`
	CPF  string `yaml:"cpf"`
}

// Summary counts of what Apply inserted or skipped.
type Summary struct {
	Usuarios    int
	Obras       int
	Equipes     int
	Integrantes int
	Skipped     int
}

// Load reads and strictly decodes a seed file. Unknown keys are errors.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler seed %s: %w", path, err)
	}
	return Decode(bytes.NewReader(raw))
}

// Decode parses a seed document.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("seed inválido: %w", err)
	}
	return &f, nil
}

// Apply inserts the document. Users and obras that already exist are skipped,
// which makes a seed safe to run twice.
func Apply(ctx context.Context, svc *service.Service, f *File, logger *zap.Logger) (Summary, error) {
	dto.RegisterValidators()

	var sum Summary
	var masterID string

	for _, u := range f.Usuarios {
		req := &dto.CreateUsuarioRequest{
			Username:  u.Username,
			Password:  u.Password,
			Nome:      u.Nome,
			Sobrenome: u.Sobrenome,
			Email:     u.Email,
			Role:      u.Role,
		}
		if err := binding.Validator.ValidateStruct(req); err != nil {
			return sum, fmt.Errorf("usuário %q: %v", u.Username, dto.FieldErrors(err))
		}

		created, err := svc.Usuario.Create(ctx, req)
		switch {
		case errors.Is(err, service.ErrUsernameExists), errors.Is(err, service.ErrEmailExists):
			logger.Info("usuário já existe, ignorado", zap.String("username", u.Username))
			sum.Skipped++
			continue
		case err != nil:
			return sum, fmt.Errorf("usuário %q: %w", u.Username, err)
		}
		if masterID == "" && created.Role == model.RoleMaster {
			masterID = created.ID
		}
		sum.Usuarios++
	}

	for _, o := range f.Obras {
		req, err := o.request()
		if err != nil {
			return sum, fmt.Errorf("obra %q: %w", o.Nome, err)
		}
		if err := binding.Validator.ValidateStruct(req); err != nil {
			return sum, fmt.Errorf("obra %q: %v", o.Nome, dto.FieldErrors(err))
		}

		obra, err := svc.Obra.Create(ctx, req, masterID)
		switch {
		case errors.Is(err, service.ErrCEIExists):
			logger.Info("obra já existe, ignorada", zap.String("cei", o.CEI))
			sum.Skipped++
			continue
		case err != nil:
			return sum, fmt.Errorf("obra %q: %w", o.Nome, err)
		}
		sum.Obras++

		for _, e := range o.Equipes {
			equipe, err := svc.Equipe.Create(ctx, &dto.CreateEquipeRequest{Nome: e.Nome, ObraID: obra.ID})
			if err != nil {
				return sum, fmt.Errorf("equipe %q: %w", e.Nome, err)
			}
			sum.Equipes++

			for _, i := range e.Integrantes {
				_, err := svc.Integrante.Create(ctx, &dto.CreateIntegranteRequest{Nome: i.Nome, CPF: i.CPF, EquipeID: &equipe.ID})
				switch {
				case errors.Is(err, service.ErrCPFExists):
					sum.Skipped++
				case err != nil:
					return sum, fmt.Errorf("integrante %q: %w", i.Nome, err)
				default:
					sum.Integrantes++
				}
			}
		}
	}

	return sum, nil
}

func (o Obra) request() (*dto.CreateObraRequest, error) {
	valor := decimal.Zero
	if o.ValorM2 != "" {
		v, err := decimal.NewFromString(o.ValorM2)
		if err != nil {
			return nil, fmt.Errorf("valor_m2: %w", err)
		}
		valor = v
	}

	req := &dto.CreateObraRequest{
		Nome:        o.Nome,
		CEI:         o.CEI,
		Construtora: o.Construtora,
		ValorM2:     valor,
		DataInicio:  o.DataInicio,
		DataFim:     o.DataFim,
		Endereco: dto.EnderecoRequest{
			CEP:         o.Endereco.CEP,
			Logradouro:  o.Endereco.Logradouro,
			Numero:      o.Endereco.Numero,
			Complemento: o.Endereco.Complemento,
			Bairro:      o.Endereco.Bairro,
			Cidade:      o.Endereco.Cidade,
			Estado:      o.Endereco.Estado,
		},
	}

	for _, t := range o.Torres {
		torre := dto.TorreRequest{Nome: t.Nome}
		for _, p := range t.Pavimentos {
			area, err := decimal.NewFromString(p.AreaM2)
			if err != nil {
				return nil, fmt.Errorf("%s/%s area_m2: %w", t.Nome, p.Identificador, err)
			}
			argamassa, err := decimal.NewFromString(p.ArgamassaM3)
			if err != nil {
				return nil, fmt.Errorf("%s/%s argamassa_m3: %w", t.Nome, p.Identificador, err)
			}
			torre.Pavimentos = append(torre.Pavimentos, dto.PavimentoRequest{
				Identificador: p.Identificador,
				AreaM2:        area,
				ArgamassaM3:   argamassa,
			})
		}
		req.Torres = append(req.Torres, torre)
	}
	return req, nil
}
