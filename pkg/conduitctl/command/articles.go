/*
Copyright 2023 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/nuclio/ajax/pkg/conduit"
	"github.com/nuclio/ajax/pkg/errgroup"
	"github.com/nuclio/ajax/pkg/renderer"

	"github.com/nuclio/errors"
	"github.com/nuclio/nuclio-sdk-go"
	"github.com/spf13/cobra"
)

const timeFormat = "2006-01-02 15:04"

type articlesCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	filter         conduit.ArticleFilter
	feed           bool
	output         string
}

func newArticlesCommandeer(rootCommandeer *RootCommandeer) *articlesCommandeer {
	commandeer := &articlesCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"ar"},
		Short:   "List articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			var articleList *conduit.ArticleList
			var err error

			if commandeer.feed {
				articleList, err = rootCommandeer.conduitClient.Feed(rootCommandeer.context(), &commandeer.filter)
			} else {
				articleList, err = rootCommandeer.conduitClient.ListArticles(rootCommandeer.context(), &commandeer.filter)
			}

			if err != nil {
				return errors.Wrap(err, "Failed to get articles")
			}

			if len(articleList.Articles) == 0 {
				cmd.OutOrStdout().Write([]byte("No articles found\n")) // nolint: errcheck
				return nil
			}

			return renderArticles(cmd.OutOrStdout(), commandeer.output, articleList)
		},
	}

	cmd.Flags().StringVar(&commandeer.filter.Tag, "tag", "", "Only articles with this tag")
	cmd.Flags().StringVar(&commandeer.filter.Author, "author", "", "Only articles by this user")
	cmd.Flags().StringVar(&commandeer.filter.Favorited, "favorited", "", "Only articles favorited by this user")
	cmd.Flags().IntVar(&commandeer.filter.Limit, "limit", conduit.DefaultPageSize, "Page size")
	cmd.Flags().IntVar(&commandeer.filter.Offset, "offset", 0, "Number of articles to skip")
	cmd.Flags().BoolVar(&commandeer.feed, "feed", false, "Articles of followed users (requires a token)")
	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatText, "Output format - \"text\", \"wide\", \"yaml\", or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}

type articleCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	favorite       bool
	unfavorite     bool
	comments       bool
	output         string
}

func newArticleCommandeer(rootCommandeer *RootCommandeer) *articleCommandeer {
	commandeer := &articleCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "article slug",
		Short: "Display an article, optionally (un)favoriting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if commandeer.favorite && commandeer.unfavorite {
				return nuclio.NewErrBadRequest("--favorite and --unfavorite are mutually exclusive")
			}

			if err := rootCommandeer.initialize(); err != nil {
				return errors.Wrap(err, "Failed to initialize root")
			}

			ctx := rootCommandeer.context()
			slug := args[0]

			var article *conduit.Article
			var comments []conduit.Comment

			errGroup, errGroupCtx := errgroup.WithContext(ctx, rootCommandeer.loggerInstance, 2)

			errGroup.Go("get article", func() error {
				var err error

				switch {
				case commandeer.favorite:
					article, err = rootCommandeer.conduitClient.Favorite(errGroupCtx, slug)
				case commandeer.unfavorite:
					article, err = rootCommandeer.conduitClient.Unfavorite(errGroupCtx, slug)
				default:
					article, err = rootCommandeer.conduitClient.GetArticle(errGroupCtx, slug)
				}

				if err != nil {
					return errors.Wrap(err, "Failed to get article")
				}

				return nil
			})

			if commandeer.comments {
				errGroup.Go("get comments", func() error {
					var err error

					comments, err = rootCommandeer.conduitClient.ListComments(errGroupCtx, slug)
					if err != nil {
						return errors.Wrap(err, "Failed to get comments")
					}

					return nil
				})
			}

			if err := errGroup.Wait(); err != nil {
				return err
			}

			if err := renderArticles(cmd.OutOrStdout(), commandeer.output, &conduit.ArticleList{
				Articles:      []conduit.Article{*article},
				ArticlesCount: 1,
			}); err != nil {
				return errors.Wrap(err, "Failed to render article")
			}

			if !commandeer.comments {
				return nil
			}

			return renderComments(cmd.OutOrStdout(), commandeer.output, comments)
		},
	}

	cmd.Flags().BoolVar(&commandeer.favorite, "favorite", false, "Favorite the article")
	cmd.Flags().BoolVar(&commandeer.unfavorite, "unfavorite", false, "Unfavorite the article")
	cmd.Flags().BoolVar(&commandeer.comments, "comments", false, "Display the article's comments")
	cmd.Flags().StringVarP(&commandeer.output, "output", "o", renderer.OutputFormatText, "Output format - \"text\", \"wide\", \"yaml\", or \"json\"")

	commandeer.cmd = cmd

	return commandeer
}

func renderArticles(writer io.Writer, outputFormat string, articleList *conduit.ArticleList) error {
	rendererInstance := renderer.NewRenderer(writer)

	return rendererInstance.Render(outputFormat, articleList, func(wide bool) error {
		header := []interface{}{"Slug", "Title", "Author", "Favorites"}
		if wide {
			header = append(header, "Tags", "Created")
		}

		var records [][]interface{}
		for _, article := range articleList.Articles {
			record := []interface{}{
				article.Slug,
				article.Title,
				article.Author.Username,
				article.FavoritesCount,
			}

			if wide {
				record = append(record,
					strings.Join(article.TagList, ","),
					article.CreatedAt.Format(timeFormat))
			}

			records = append(records, record)
		}

		rendererInstance.RenderTable(header, records)

		if articleList.ArticlesCount > len(articleList.Articles) {
			fmt.Fprintf(writer, "%d of %d articles\n", len(articleList.Articles), articleList.ArticlesCount) // nolint: errcheck
		}

		return nil
	})
}

func renderComments(writer io.Writer, outputFormat string, comments []conduit.Comment) error {
	rendererInstance := renderer.NewRenderer(writer)

	return rendererInstance.Render(outputFormat, comments, func(wide bool) error {
		var records [][]interface{}
		for _, comment := range comments {
			records = append(records, []interface{}{
				comment.ID,
				comment.Author.Username,
				comment.CreatedAt.Format(timeFormat),
				comment.Body,
			})
		}

		rendererInstance.RenderTable([]interface{}{"ID", "Author", "Created", "Comment"}, records)

		return nil
	})
}
