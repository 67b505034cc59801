package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/service"
)

var remoteFlag bool

// itemStore is the study document the items commands act on:
// the local SQLite file or, with --remote, the server.
type itemStore interface {
	StudyItems(ctx context.Context) (domain.StudyData, error)
	AddStudyItem(ctx context.Context, kind domain.StudyItemKind, content, title string) (domain.StudyItem, error)
	DeleteStudyItem(ctx context.Context, kind domain.StudyItemKind, id string) error
}

// localItems adapts a StudyService to itemStore
type localItems struct {
	studies *service.StudyService
}

func (l localItems) StudyItems(ctx context.Context) (domain.StudyData, error) {
	return l.studies.Snapshot(), nil
}

func (l localItems) AddStudyItem(ctx context.Context, kind domain.StudyItemKind, content, title string) (domain.StudyItem, error) {
	return l.studies.Add(ctx, kind, content, title)
}

func (l localItems) DeleteStudyItem(ctx context.Context, kind domain.StudyItemKind, id string) error {
	return l.studies.Delete(ctx, kind, id)
}

func init() {
	items := &cobra.Command{
		Use:   "items",
		Short: "Manage notes, bookmarks and saved points",
	}
	items.PersistentFlags().BoolVarP(&remoteFlag, "remote", "r", false, "Use the server's study document instead of the local database")

	list := &cobra.Command{
		Use:   "list [kind]",
		Short: "List study items, optionally of one kind",
		Args:  cobra.MaximumNArgs(1),
		Run:   runItemsList,
	}

	add := &cobra.Command{
		Use:   "add <kind> <content>",
		Short: "Add a study item",
		Args:  cobra.MinimumNArgs(2),
		Run:   runItemsAdd,
	}
	add.Flags().StringP("title", "t", "", "Item title (default depends on kind)")

	rm := &cobra.Command{
		Use:   "rm <kind> <id>",
		Short: "Delete a study item",
		Args:  cobra.ExactArgs(2),
		Run:   runItemsRemove,
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Print the whole study document as JSON",
		Run:   runItemsExport,
	}

	items.AddCommand(list, add, rm, export)
	RootCmd.AddCommand(items)
}

func openItems(ctx context.Context) (itemStore, func()) {
	cfg := loadConfig()
	if remoteFlag {
		return newClient(cfg), func() {}
	}

	studies, closeStore, err := openStudies(ctx, cfg)
	if err != nil {
		exitErr("open store", err)
	}
	return localItems{studies: studies}, closeStore
}

// selectItems flattens data in note, bookmark, saved point order
func selectItems(data domain.StudyData, kinds []domain.StudyItemKind) []domain.StudyItem {
	var all []domain.StudyItem
	for _, kind := range kinds {
		switch kind {
		case domain.KindNote:
			all = append(all, data.Notes...)
		case domain.KindBookmark:
			all = append(all, data.Bookmarks...)
		case domain.KindSavedPoint:
			all = append(all, data.SavedPoints...)
		}
	}
	return all
}

func runItemsList(cmd *cobra.Command, args []string) {
	store, closeStore := openItems(cmd.Context())
	defer closeStore()

	kinds := []domain.StudyItemKind{domain.KindNote, domain.KindBookmark, domain.KindSavedPoint}
	if len(args) == 1 {
		kind, err := domain.ParseStudyItemKind(args[0])
		if err != nil {
			exitErr("list", err)
		}
		kinds = []domain.StudyItemKind{kind}
	}

	data, err := store.StudyItems(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}
	all := selectItems(data, kinds)

	if formatFlag == "json" {
		writeJSON(os.Stdout, all)
		return
	}
	printItems(os.Stdout, all)
}

func runItemsAdd(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")

	kind, err := domain.ParseStudyItemKind(args[0])
	if err != nil {
		exitErr("add", err)
	}
	content := strings.Join(args[1:], " ")

	store, closeStore := openItems(cmd.Context())
	defer closeStore()

	item, err := store.AddStudyItem(cmd.Context(), kind, content, title)
	if err != nil {
		exitErr("add", err)
	}

	if formatFlag == "json" {
		writeJSON(os.Stdout, item)
		return
	}
	color.Green("Added %s %s", kind, item.ID)
}

func runItemsRemove(cmd *cobra.Command, args []string) {
	kind, err := domain.ParseStudyItemKind(args[0])
	if err != nil {
		exitErr("rm", err)
	}

	store, closeStore := openItems(cmd.Context())
	defer closeStore()

	if err := removeItem(cmd.Context(), store, kind, args[1]); err != nil {
		exitErr("rm", err)
	}

	if formatFlag != "json" {
		color.Green("Deleted %s %s", kind, args[1])
	}
}

// removeItem deletes id, reporting ids that do not exist
func removeItem(ctx context.Context, store itemStore, kind domain.StudyItemKind, id string) error {
	data, err := store.StudyItems(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, item := range selectItems(data, []domain.StudyItemKind{kind}) {
		if item.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no %s with id %s", kind, id)
	}
	return store.DeleteStudyItem(ctx, kind, id)
}

func runItemsExport(cmd *cobra.Command, args []string) {
	store, closeStore := openItems(cmd.Context())
	defer closeStore()

	data, err := store.StudyItems(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	writeJSON(os.Stdout, data)
}

func writeJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func printItems(w io.Writer, items []domain.StudyItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No study items yet.")
		return
	}

	title := color.New(color.Bold)
	dim := color.New(color.Faint)
	for _, item := range items {
		title.Fprintf(w, "%s", item.Title)
		dim.Fprintf(w, "  [%s] %s  %s\n", item.Kind, item.ID, humanize.Time(item.CreatedAt))
		fmt.Fprintf(w, "  %s\n", item.Content)
	}
}
