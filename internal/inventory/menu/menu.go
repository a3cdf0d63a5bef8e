// Package menu provides the interactive text menu for the inventory.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
)

const (
	colorReset   = "\x1b[0m"
	colorMenu    = "\x1b[93m"
	colorAdd     = "\x1b[92m"
	colorUpdate  = "\x1b[96m"
	colorRemove  = "\x1b[91m"
	colorShow    = "\x1b[94m"
	colorSearch  = "\x1b[95m"
	colorInput   = "\x1b[1m"
	colorError   = "\x1b[31m"
	colorSuccess = "\x1b[32m"
)

const (
	defaultExportPath   = "estoque.csv"
	defaultUpcomingDays = 30
)

type action struct {
	label string
	color string
	run   func(ctx context.Context) error
}

// Menu drives the inventory through a numbered text menu.
type Menu struct {
	service service.ProductService
	reader  io.Reader
	in      *lineReader
	out     io.Writer
	logger  *slog.Logger

	exportPath   string
	upcomingDays int
	color        bool

	order   []string
	actions map[string]action
}

// Option configures a Menu.
type Option func(*Menu)

// WithExportPath sets the default CSV export path.
func WithExportPath(path string) Option {
	return func(m *Menu) {
		m.exportPath = path
	}
}

// WithUpcomingDays sets the default window for the upcoming expirations report.
func WithUpcomingDays(days int) Option {
	return func(m *Menu) {
		m.upcomingDays = days
	}
}

// WithColor enables ANSI colours in menu output.
func WithColor(enabled bool) Option {
	return func(m *Menu) {
		m.color = enabled
	}
}

// New creates a Menu reading answers from in and writing to out.
func New(svc service.ProductService, in io.Reader, out io.Writer, logger *slog.Logger, opts ...Option) *Menu {
	m := &Menu{
		service:      svc,
		reader:       in,
		out:          out,
		logger:       logger.With("component", "menu"),
		exportPath:   defaultExportPath,
		upcomingDays: defaultUpcomingDays,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.order = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}
	m.actions = map[string]action{
		"1": {label: "Adicionar Produto", color: colorAdd, run: m.add},
		"2": {label: "Atualizar Produto", color: colorUpdate, run: m.update},
		"3": {label: "Remover Produto", color: colorRemove, run: m.remove},
		"4": {label: "Exibir Estoque", color: colorShow, run: m.show},
		"5": {label: "Buscar por Termo", color: colorSearch, run: m.searchByTerm},
		"6": {label: "Buscar por Filtro", color: colorSearch, run: m.searchByFilter},
		"7": {label: "Listar por Validade", color: colorShow, run: m.listByExpiry},
		"8": {label: "Vencimentos Próximos", color: colorRemove, run: m.upcoming},
		"9": {label: "Exportar CSV", color: colorAdd, run: m.export},
		"0": {label: "Sair", color: colorSearch},
	}
	return m
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Exhausted input ends the session without error.
func (m *Menu) Run(ctx context.Context) error {
	m.in = newLineReader(m.reader)
	defer m.in.Close()

	for {
		m.printMenu()
		choice, err := m.ask(ctx, "\nEscolha uma opção: ")
		if err != nil {
			return endOfSession(err)
		}

		a, ok := m.actions[choice]
		if !ok {
			m.fail("Opção inválida, tente novamente.")
			continue
		}
		m.logger.Debug("Menu option selected", "option", choice)
		if a.run == nil {
			m.say(colorSearch, "\nEncerrando o sistema...")
			return nil
		}

		m.say(a.color, fmt.Sprintf("\n--- %s ---\n", a.label))
		if err := a.run(ctx); err != nil {
			return endOfSession(err)
		}
	}
}

func endOfSession(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *Menu) printMenu() {
	m.say(colorMenu, "\n--- Sistema de Controle de Estoque ---\n")
	for _, key := range m.order {
		a := m.actions[key]
		m.say(a.color, fmt.Sprintf("%s. %s", key, a.label))
	}
}

func (m *Menu) add(ctx context.Context) error {
	id, err := m.askInt(ctx, "ID do Produto: ", gte(0))
	if err != nil {
		return err
	}
	if m.service.Exists(id) {
		m.fail(fmt.Sprintf("Produto com ID %d já existe.", id))
		return nil
	}
	name, err := m.askText(ctx, "Nome do Produto: ")
	if err != nil {
		return err
	}
	quantity, err := m.askInt(ctx, "Quantidade: ", gte(0))
	if err != nil {
		return err
	}
	price, err := m.askDecimal(ctx, "Preço: R$ ")
	if err != nil {
		return err
	}
	expiry, err := m.askOptionalDate(ctx, "Validade (dd/mm/aaaa, em branco se não houver): ")
	if err != nil {
		return err
	}

	created, err := m.service.Create(service.ProductCreateDto{
		ID:       id,
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Expiry:   expiry,
	})
	if err != nil {
		m.report(err)
		return nil
	}
	m.success(fmt.Sprintf("Produto %s adicionado com sucesso!", created.Name))
	return nil
}

func (m *Menu) update(ctx context.Context) error {
	id, err := m.askInt(ctx, "ID do Produto a atualizar: ", gte(0))
	if err != nil {
		return err
	}
	if !m.service.Exists(id) {
		m.fail(fmt.Sprintf("Produto com ID %d não encontrado.", id))
		return nil
	}
	quantity, err := m.askOptionalInt(ctx, "Nova Quantidade (ou deixe em branco para manter): ", gte(0))
	if err != nil {
		return err
	}
	price, err := m.askOptionalDecimal(ctx, "Novo Preço (ou deixe em branco para manter): R$ ")
	if err != nil {
		return err
	}

	updated, err := m.service.Update(id, service.ProductUpdateDto{Quantity: quantity, Price: price})
	if err != nil {
		m.report(err)
		return nil
	}
	m.success(fmt.Sprintf("Produto %s atualizado com sucesso!", updated.Name))
	return nil
}

func (m *Menu) remove(ctx context.Context) error {
	id, err := m.askInt(ctx, "ID do Produto a remover: ", gte(0))
	if err != nil {
		return err
	}
	if !m.service.Exists(id) {
		m.fail(fmt.Sprintf("Produto com ID %d não encontrado.", id))
		return nil
	}

	removed, err := m.service.DeleteByID(id)
	if err != nil {
		m.report(err)
		return nil
	}
	m.success(fmt.Sprintf("Produto %s removido com sucesso!", removed.Name))
	return nil
}

func (m *Menu) show(_ context.Context) error {
	products := m.service.FindAll()
	if len(products) == 0 {
		m.say(colorMenu, "Estoque vazio.")
		return nil
	}
	RenderProducts(m.out, products, m.color)
	RenderValuation(m.out, m.service.Valuation())
	return nil
}

func (m *Menu) searchByTerm(ctx context.Context) error {
	term, err := m.askText(ctx, "Termo de busca (nome ou ID): ")
	if err != nil {
		return err
	}
	RenderProducts(m.out, m.service.Search(term), m.color)
	return nil
}

// searchByFilter applies exactly one filter chosen by the user.
func (m *Menu) searchByFilter(ctx context.Context) error {
	m.say(colorSearch, "1. Nome\n2. ID\n3. Quantidade mínima\n4. Preço máximo\n5. Validade mínima")
	choice, err := m.askInt(ctx, "Filtro: ", func(v int64) bool { return v >= 1 && v <= 5 })
	if err != nil {
		return err
	}

	var f store.Filter
	switch choice {
	case 1:
		name, err := m.askText(ctx, "Nome contém: ")
		if err != nil {
			return err
		}
		f.Name = &name
	case 2:
		id, err := m.askInt(ctx, "ID: ", gte(0))
		if err != nil {
			return err
		}
		f.ID = &id
	case 3:
		quantity, err := m.askInt(ctx, "Quantidade mínima: ", gte(0))
		if err != nil {
			return err
		}
		f.MinQuantity = &quantity
	case 4:
		price, err := m.askDecimal(ctx, "Preço máximo: R$ ")
		if err != nil {
			return err
		}
		f.MaxPrice = &price
	case 5:
		for f.MinExpiry == nil {
			expiry, err := m.askOptionalDate(ctx, "Validade mínima (dd/mm/aaaa): ")
			if err != nil {
				return err
			}
			if expiry == nil {
				m.fail("Valor obrigatório.")
			}
			f.MinExpiry = expiry
		}
	}

	RenderProducts(m.out, m.service.Filter(f), m.color)
	return nil
}

func (m *Menu) listByExpiry(_ context.Context) error {
	RenderProducts(m.out, m.service.SortedByExpiry(), m.color)
	return nil
}

func (m *Menu) upcoming(ctx context.Context) error {
	days, err := m.askOptionalInt(ctx, fmt.Sprintf("Dias (em branco para %d): ", m.upcomingDays), gte(0))
	if err != nil {
		return err
	}
	window := m.upcomingDays
	if days != nil {
		window = *days
	}

	products, err := m.service.Upcoming(window)
	if err != nil {
		m.report(err)
		return nil
	}
	RenderProducts(m.out, products, m.color)
	return nil
}

func (m *Menu) export(ctx context.Context) error {
	path, err := m.ask(ctx, fmt.Sprintf("Arquivo CSV (em branco para %s): ", m.exportPath))
	if err != nil {
		return err
	}
	if path == "" {
		path = m.exportPath
	}

	if err := m.service.Export(path); err != nil {
		m.fail(fmt.Sprintf("Não foi possível exportar: %v", err))
		return nil
	}
	m.success(fmt.Sprintf("Estoque exportado para %s.", path))
	return nil
}

// report prints a user-facing message for a failed operation.
func (m *Menu) report(err error) {
	switch {
	case errors.Is(err, inverrors.ErrDuplicateKey):
		m.fail("Produto já existe.")
	case errors.Is(err, inverrors.ErrNotFound):
		m.fail("Produto não encontrado.")
	case errors.Is(err, inverrors.ErrInvalidInput):
		m.fail(fmt.Sprintf("Dados inválidos: %v", err))
	case errors.Is(err, inverrors.ErrIOFailure):
		m.fail(fmt.Sprintf("Alteração mantida em memória, mas não foi possível salvar: %v", err))
	default:
		m.fail(fmt.Sprintf("Erro: %v", err))
	}
}

func (m *Menu) paint(color, text string) string {
	if !m.color {
		return text
	}
	return color + text + colorReset
}

func (m *Menu) say(color, text string) {
	_, _ = fmt.Fprintln(m.out, m.paint(color, text))
}

func (m *Menu) fail(text string) {
	m.say(colorError, text)
}

func (m *Menu) success(text string) {
	m.say(colorSuccess, text)
}
