package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/spf13/cobra"
)

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Browse and upload employee documents",
	}

	cmd.AddCommand(
		a.documentsUsersCmd(),
		a.documentsCategoriesCmd(),
		a.documentsListCmd(),
		a.documentsUploadCmd(),
		a.documentsDownloadCmd(),
	)

	return cmd
}

// navigate walks the navigator down to the given user and, if set, category.
func (a *app) navigate(ctx context.Context, userID, category string) (*controllers.Navigator, error) {
	nav := a.workspace().Navigator

	if err := nav.LoadUsers(ctx); err != nil {
		return nil, err
	}
	if userID == "" {
		return nav, nil
	}

	if err := nav.SelectUser(ctx, userID); err != nil {
		return nil, err
	}
	if category == "" {
		return nav, nil
	}

	if err := nav.SelectCategory(ctx, category); err != nil {
		return nil, err
	}

	return nav, nil
}

func (a *app) documentsUsersCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "users",
		Short: "List employees that can hold documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nav, err := a.navigate(cmd.Context(), "", "")
			if err != nil {
				return err
			}

			view := nav.View()
			t := &table{headers: []string{"ID", "NAME", "EMAIL", "DEPARTMENT"}}
			for _, u := range view.Users {
				t.add(u.ID, u.Name, u.Email, u.Department)
			}

			return a.print(cmd.OutOrStdout(), view.Users, t)
		},
	}, "/documents")
}

func (a *app) documentsCategoriesCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "categories <user-id>",
		Short: "List the document categories of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nav, err := a.navigate(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}

			view := nav.View()
			t := &table{headers: []string{"CATEGORY", "NAME"}}
			for _, c := range view.Categories {
				t.add(c.Category, c.DisplayName)
			}

			return a.print(cmd.OutOrStdout(), view.Categories, t)
		},
	}, "/documents")
}

func (a *app) documentsListCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "list <user-id> <category>",
		Short: "List the documents of one category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nav, err := a.navigate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			view := nav.View()
			t := &table{headers: []string{"ID", "FILE", "SIZE", "TYPE", "UPLOADED"}}
			for _, d := range view.Documents {
				t.add(d.ID, d.FileName, strconv.FormatInt(d.FileSize, 10), d.MimeType, d.UploadedAt)
			}

			return a.print(cmd.OutOrStdout(), view.Documents, t)
		},
	}, "/documents")
}

func openUpload(path string) (hrapi.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return hrapi.File{}, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return hrapi.File{}, nil, err
	}

	return hrapi.File{
		Name:     filepath.Base(path),
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     info.Size(),
		Content:  f,
	}, f, nil
}

func (a *app) documentsUploadCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "upload <user-id> <category> <file>...",
		Short: "Upload files into a category",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]hrapi.File, 0, len(args)-2)
			for _, path := range args[2:] {
				file, handle, err := openUpload(path)
				if err != nil {
					return err
				}
				defer handle.Close()

				files = append(files, file)
			}

			if _, err := a.navigate(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			items, err := a.workspace().Upload(cmd.Context(), files, func(item controllers.UploadItem) {
				if a.asJSON || item.Status == controllers.UploadUploading {
					return
				}

				line := fmt.Sprintf("%-9s %s", item.Status, item.Name)
				if item.Error != "" {
					line += ": " + item.Error
				}
				fmt.Fprintln(out, line)
			})
			if items == nil {
				return err
			}

			if a.asJSON {
				if printErr := a.print(out, items, nil); printErr != nil {
					return printErr
				}
			}

			var failed int
			for _, item := range items {
				if item.Status == controllers.UploadFailed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed: %w", failed, len(items), err)
			}

			return nil
		},
	}, "/documents")
}

func (a *app) documentsDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <user-id> <category> <document-id>",
		Short: "Download a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			nav, err := a.navigate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			download, err := nav.Download(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			defer download.Body.Close()

			path := output
			if path == "" {
				path = filepath.Base(download.FileName)
				if path == "" || path == "." || path == string(filepath.Separator) {
					path = args[2]
				}
			}

			var dst io.Writer
			if path == "-" {
				dst = cmd.OutOrStdout()
			} else {
				f, createErr := os.Create(path)
				if createErr != nil {
					return createErr
				}
				defer func() {
					err = errors.Join(err, f.Close())
				}()
				dst = f
			}

			n, err := io.Copy(dst, download.Body)
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			if path != "-" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, - for stdout (default: the document file name)")

	return guarded(cmd, "/documents")
}
