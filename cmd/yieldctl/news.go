package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"YieldDesk/internal/domain/models"
	xhttp "YieldDesk/pkg/http"
	"YieldDesk/pkg/util"
)

func newNewsCommand(opts *rootOptions) *cobra.Command {
	var (
		req      models.NewsRequest
		from, to string
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "news [query]",
		Short: "Search financial news headlines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Query = args[0]
			}
			var err error
			if req.From, err = util.ParseDate(from); err != nil {
				return err
			}
			if req.To, err = util.ParseDate(to); err != nil {
				return err
			}

			if err := xhttp.ValidateStruct(req); err != nil {
				return err
			}

			deps, err := opts.build(cmd)
			if err != nil {
				return err
			}
			res, err := deps.news.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			if raw || opts.format != "json" {
				return opts.emit(cmd.OutOrStdout(), res)
			}
			return renderNews(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVarP(&req.PageSize, "page-size", "n", 20, "articles to return (1-100)")
	cmd.Flags().StringVar(&req.SortBy, "sort", models.SortPublishedAt, "publishedAt|relevancy|popularity")
	cmd.Flags().StringVar(&from, "from", "", "oldest publication date")
	cmd.Flags().StringVar(&to, "to", "", "newest publication date")
	cmd.Flags().BoolVar(&raw, "raw", false, "print JSON instead of rendered markdown")
	return cmd
}

func newsMarkdown(res *models.NewsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# News: %s\n\n", res.Query.Query)
	if res.Unavailable {
		b.WriteString("_News is currently unavailable._\n")
		return b.String()
	}
	if len(res.Articles) == 0 {
		b.WriteString("_No articles found._\n")
		return b.String()
	}
	for _, a := range res.Articles {
		fmt.Fprintf(&b, "## [%s](%s)\n\n", a.Title, a.URL)
		fmt.Fprintf(&b, "*%s* · %s\n\n", a.Source, a.PublishedAt.Format("2006-01-02 15:04 MST"))
		if a.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", a.Description)
		}
	}
	return b.String()
}

func renderNews(w io.Writer, res *models.NewsResult) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(newsMarkdown(res))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
