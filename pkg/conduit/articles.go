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

package conduit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nuclio/errors"
)

type articleEnvelope struct {
	Article Article `json:"article"`
}

type commentEnvelope struct {
	Comment Comment `json:"comment"`
}

type commentsEnvelope struct {
	Comments []Comment `json:"comments"`
}

type tagsEnvelope struct {
	Tags []string `json:"tags"`
}

// ListArticles returns the most recent articles matching the filter. A nil filter means the
// first page of all articles
func (c *Client) ListArticles(ctx context.Context, filter *ArticleFilter) (*ArticleList, error) {
	articleList := ArticleList{}

	if err := c.get(ctx, "/articles", pageFilter(filter), &articleList); err != nil {
		return nil, errors.Wrap(err, "Failed to list articles")
	}

	return &articleList, nil
}

// Feed returns the most recent articles of followed users. Only the filter's paging applies
func (c *Client) Feed(ctx context.Context, filter *ArticleFilter) (*ArticleList, error) {
	articleList := ArticleList{}

	paging := pageFilter(filter)

	if err := c.get(ctx, "/articles/feed", &ArticleFilter{
		Limit:  paging.Limit,
		Offset: paging.Offset,
	}, &articleList); err != nil {
		return nil, errors.Wrap(err, "Failed to get feed")
	}

	return &articleList, nil
}

func (c *Client) GetArticle(ctx context.Context, slug string) (*Article, error) {
	envelope := articleEnvelope{}

	if err := c.get(ctx, articlePath(slug), nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to get article %s", slug)
	}

	return &envelope.Article, nil
}

func (c *Client) CreateArticle(ctx context.Context, input *ArticleInput) (*Article, error) {
	envelope := articleEnvelope{}

	if err := c.call(ctx,
		http.MethodPost,
		"/articles",
		map[string]interface{}{"article": input},
		&envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to create article")
	}

	return &envelope.Article, nil
}

func (c *Client) UpdateArticle(ctx context.Context, slug string, input *ArticleInput) (*Article, error) {
	envelope := articleEnvelope{}

	if err := c.call(ctx,
		http.MethodPut,
		articlePath(slug),
		map[string]interface{}{"article": input},
		&envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to update article %s", slug)
	}

	return &envelope.Article, nil
}

func (c *Client) DeleteArticle(ctx context.Context, slug string) error {
	if err := c.call(ctx, http.MethodDelete, articlePath(slug), nil, nil); err != nil {
		return errors.Wrapf(err, "Failed to delete article %s", slug)
	}

	return nil
}

func (c *Client) Favorite(ctx context.Context, slug string) (*Article, error) {
	envelope := articleEnvelope{}

	if err := c.call(ctx, http.MethodPost, articlePath(slug)+"/favorite", nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to favorite article %s", slug)
	}

	return &envelope.Article, nil
}

func (c *Client) Unfavorite(ctx context.Context, slug string) (*Article, error) {
	envelope := articleEnvelope{}

	if err := c.call(ctx, http.MethodDelete, articlePath(slug)+"/favorite", nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to unfavorite article %s", slug)
	}

	return &envelope.Article, nil
}

func (c *Client) ListComments(ctx context.Context, slug string) ([]Comment, error) {
	envelope := commentsEnvelope{}

	if err := c.get(ctx, articlePath(slug)+"/comments", nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to list comments of article %s", slug)
	}

	return envelope.Comments, nil
}

func (c *Client) AddComment(ctx context.Context, slug string, body string) (*Comment, error) {
	envelope := commentEnvelope{}

	if err := c.call(ctx,
		http.MethodPost,
		articlePath(slug)+"/comments",
		map[string]interface{}{"comment": map[string]string{"body": body}},
		&envelope); err != nil {
		return nil, errors.Wrapf(err, "Failed to comment on article %s", slug)
	}

	return &envelope.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, slug string, commentID int) error {
	if err := c.call(ctx,
		http.MethodDelete,
		articlePath(slug)+"/comments/"+strconv.Itoa(commentID),
		nil,
		nil); err != nil {
		return errors.Wrapf(err, "Failed to delete comment %d", commentID)
	}

	return nil
}

func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	envelope := tagsEnvelope{}

	if err := c.get(ctx, "/tags", nil, &envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to list tags")
	}

	return envelope.Tags, nil
}

func articlePath(slug string) string {
	return "/articles/" + url.PathEscape(slug)
}

func pageFilter(filter *ArticleFilter) *ArticleFilter {
	paged := ArticleFilter{}
	if filter != nil {
		paged = *filter
	}

	if paged.Limit == 0 {
		paged.Limit = DefaultPageSize
	}

	return &paged
}
