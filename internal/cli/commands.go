package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/workspace"
	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/infrastructure/postal"
)

// ── Sesión ────────────────────────────────────────────────────────────────────

func (s *session) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [url]",
		Short: "Carga un enlace compartido o el borrador y lo muestra",
		Long: `Sin argumentos restaura el borrador (o crea una factura nueva con los perfiles
guardados). Con un enlace "…#data=<token>" el documento del enlace sustituye al
borrador; si el token está dañado se ignora y se sigue con el borrador.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			ws, src, err := s.open(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if raw != "" && src != workspace.SourceURL {
				fmt.Fprintln(cmd.ErrOrStderr(), "enlace no válido: se mantiene el documento anterior")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "origen: %s\n", src)
			return s.print(cmd.OutOrStdout(), ws)
		},
	}
}

func (s *session) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "new <tipo>",
		Short:     "Descarta el borrador y empieza un documento nuevo",
		Long:      "Tipos: " + typeList() + ". Los perfiles del emisor, del cliente y del banco se conservan.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: typeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := entity.ParseDocumentType(args[0])
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				if err := ws.NewDocument(ctx, t); err != nil {
					return err
				}
				// Se guarda ya para que la próxima invocación arranque con este tipo.
				return ws.Update(ctx, func(*entity.Document) error { return nil })
			})
		},
	}
}

func (s *session) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Muestra el documento actual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, _, err := s.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), ws)
		},
	}
}

// ── Campos ────────────────────────────────────────────────────────────────────

func (s *session) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <clave=valor>...",
		Short: "Asigna campos comunes del documento",
		Long: "Claves: " + strings.Join(workspace.Fields, ", ") + `.
"bank=" (vacío) quita el banco del documento; el banco guardado se conserva.
Las fechas van en formato YYYY-MM-DD.`,
		Example: `  chouhyo set client.name=株式会社サンプル client.honorific=御中
  chouhyo set issue_date=2025-01-15 subject="Web制作"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				for _, kv := range args {
					key, value, ok := strings.Cut(kv, "=")
					if !ok {
						return fmt.Errorf("%w: se esperaba clave=valor, recibido %q", domain.ErrInvalidInput, kv)
					}
					if key == "bank" {
						if value != "" {
							return fmt.Errorf("%w: use bank.name, bank.type, bank.number o bank.holder", domain.ErrInvalidInput)
						}
						if err := ws.RemoveBank(ctx); err != nil {
							return err
						}
						continue
					}
					if err := ws.Set(ctx, key, value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (s *session) typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <tipo>",
		Short: "Convierte el documento actual a otro tipo",
		Long: `Conserva número, fechas, líneas y partes. Al pasar a o desde la orden de
compra, la propia empresa cambia de hueco (emisor ⇄ destinatario).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: typeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := entity.ParseDocumentType(args[0])
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.ChangeType(ctx, t)
			})
		},
	}
}

// ── Líneas ────────────────────────────────────────────────────────────────────

func (s *session) itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Añade, modifica o elimina líneas de detalle",
	}
	cmd.AddCommand(s.itemAddCmd(), s.itemSetCmd(), s.itemRmCmd())
	return cmd
}

type itemFlags struct {
	name, desc, date, unit string
	qty, price             int64
	rate                   int
}

func (f *itemFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "品名")
	fs.StringVar(&f.desc, "desc", "", "摘要")
	fs.StringVar(&f.date, "date", "", "fecha de la línea (YYYY-MM-DD)")
	fs.Int64Var(&f.qty, "qty", 1, "数量 (≥ 1)")
	fs.StringVar(&f.unit, "unit", entity.DefaultUnit, "単位, p. ej. "+strings.Join(entity.Units, " "))
	fs.Int64Var(&f.price, "price", 0, "単価 sin impuestos, en yenes")
	fs.IntVar(&f.rate, "rate", int(entity.TaxRateStandard), "税率: "+rateList())
}

// patch traduce solo las opciones presentes en la línea de comandos.
func (f *itemFlags) patch(cmd *cobra.Command) (entity.ItemPatch, error) {
	var p entity.ItemPatch
	changed := cmd.Flags().Changed
	if changed("name") {
		p.Name = &f.name
	}
	if changed("desc") {
		p.Description = &f.desc
	}
	if changed("date") {
		d, err := entity.ParseDate(f.date)
		if err != nil {
			return p, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		p.Date = &d
	}
	if changed("qty") {
		p.Qty = &f.qty
	}
	if changed("unit") {
		p.Unit = &f.unit
	}
	if changed("price") {
		p.UnitPrice = &f.price
	}
	if changed("rate") {
		r := entity.TaxRate(f.rate)
		p.TaxRate = &r
	}
	return p, nil
}

func rateList() string {
	out := make([]string, len(entity.TaxRates))
	for i, r := range entity.TaxRates {
		out[i] = strconv.Itoa(int(r))
	}
	return strings.Join(out, ", ")
}

func (s *session) itemAddCmd() *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Añade una línea",
		Example: `  chouhyo item add --name デザイン --qty 1 --unit 式 --price 300000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.patch(cmd)
			if err != nil {
				return err
			}
			it := p.Apply(entity.NewItem())
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				_, err := ws.AddItem(ctx, it)
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func (s *session) itemSetCmd() *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:     "set <n>",
		Short:   "Modifica la línea n (empezando en 1); solo cambian las opciones indicadas",
		Example: `  chouhyo item set 2 --qty 3 --rate 8`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseLine(args[0])
			if err != nil {
				return err
			}
			p, err := f.patch(cmd)
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.UpdateItem(ctx, idx, p)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func (s *session) itemRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <n>",
		Short: "Elimina la línea n (empezando en 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseLine(args[0])
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.RemoveItem(ctx, idx)
			})
		},
	}
}

// parseLine convierte el número de línea visible (1..n) en índice.
func parseLine(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: número de línea %q", domain.ErrInvalidInput, arg)
	}
	return n - 1, nil
}

// ── Salida ────────────────────────────────────────────────────────────────────

func (s *session) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Muestra subtotal, impuesto y total con el desglose por tasa",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, _, err := s.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			v, err := document.BuildView(ws.Document())
			if err != nil {
				return err
			}
			if s.asJSON {
				return writeJSON(cmd.OutOrStdout(), v.Totals)
			}
			return writeTotals(cmd.OutOrStdout(), v)
		},
	}
}

func (s *session) shareCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Genera el enlace compartido del documento",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, _, err := s.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			link, err := ws.ShareURL(base)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", s.opts.Config.Share.BaseURL, "URL base del enlace")
	return cmd
}

func (s *session) renderCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Exporta el documento a PDF, XLSX o CSV (Shift_JIS)",
		Long: `Sin -o el archivo se llama "<título>_<número>.<ext>" en el directorio actual.
Con -o y sin --format, el formato sale de la extensión del archivo.`,
		Example: `  chouhyo render
  chouhyo render -o factura.xlsx
  chouhyo render --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "" && !cmd.Flags().Changed("format") {
				if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
					format = strings.ToLower(ext)
				}
			}
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			render, err := s.renderer()
			if err != nil {
				return err
			}
			ws, _, err := s.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			out, err := render.Render(cmd.Context(), ws.Document(), f)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = out.Filename
			}
			if err := afero.WriteFile(s.opts.Fs, path, out.Data, 0o644); err != nil {
				return fmt.Errorf("cli: escribir %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", path, len(out.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archivo de salida")
	cmd.Flags().StringVarP(&format, "format", "f", string(document.FormatPDF), "pdf, xlsx o csv")
	return cmd
}

// ── Direcciones ───────────────────────────────────────────────────────────────

func (s *session) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <issuer|client> <código postal>",
		Short: "Guarda el código postal y completa la dirección si está vacía",
		Long: `Acepta "100-0001", "1000001" o dígitos de ancho completo. La dirección encontrada
solo se escribe si el campo sigue vacío; una dirección ya escrita no se toca.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(workspace.SlotIssuer), string(workspace.SlotClient)},
		RunE: func(cmd *cobra.Command, args []string) error {
			slot := workspace.Slot(args[0])
			if slot != workspace.SlotIssuer && slot != workspace.SlotClient {
				return fmt.Errorf("%w: hueco %q (issuer o client)", domain.ErrInvalidInput, args[0])
			}
			zip, err := postal.NormalizeZip(args[1])
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				if err := ws.Set(ctx, string(slot)+".zip", zip[:3]+"-"+zip[3:]); err != nil {
					return err
				}
				task := ws.LookupAddress(ctx, slot, zip)
				timer := time.NewTimer(s.lookupTimeout())
				defer timer.Stop()
				select {
				case <-task.Done():
				case <-timer.C:
					task.Cancel()
					<-task.Done()
				}
				addr, applied, err := task.Result()
				switch {
				case err != nil:
					return err
				case !applied:
					fmt.Fprintf(cmd.ErrOrStderr(), "la dirección ya tiene valor, no se sobrescribe (%s)\n", addr)
				}
				return nil
			})
		},
	}
}

func (s *session) lookupTimeout() time.Duration {
	if t := s.opts.Config.Postal.Timeout; t > 0 {
		return t + time.Second
	}
	return 6 * time.Second
}

func (s *session) forgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <client|all>",
		Short: "Olvida el cliente guardado o borra todos los datos locales",
		Long: `"client" borra solo el cliente guardado; el documento actual no cambia.
"all" borra borrador, perfil propio, cliente y banco, y vuelve a una factura vacía.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"client", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := s.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			switch args[0] {
			case "client":
				if err := ws.ForgetClient(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cliente guardado eliminado")
				return nil
			case "all":
				if err := ws.ClearAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "datos locales eliminados")
				return nil
			}
			return fmt.Errorf("%w: %q (client o all)", domain.ErrInvalidInput, args[0])
		},
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func typeNames() []string {
	out := make([]string, 0, len(entity.DocumentTypes))
	for _, t := range entity.DocumentTypes {
		out = append(out, string(t))
	}
	return out
}

func typeList() string {
	return strings.Join(typeNames(), ", ")
}
