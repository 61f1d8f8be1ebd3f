//go:build test_unit

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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nuclio/ajax/pkg/ajax"
	"github.com/nuclio/ajax/pkg/common"
	"github.com/nuclio/ajax/pkg/transport"
	"github.com/nuclio/ajax/pkg/transport/fastclient"
	"github.com/nuclio/ajax/pkg/transport/nethttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

// ServerTestSuite runs the client over real sockets against a minimal in-process Conduit server
type ServerTestSuite struct {
	suite.Suite
	logger logger.Logger
	server *httptest.Server
	token  string
	ctx    context.Context
}

func (suite *ServerTestSuite) SetupSuite() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	expiresAt := time.Now().Add(time.Hour)
	suite.token = signToken(&expiresAt)
	suite.ctx = context.Background()

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	router.Route("/api", func(router chi.Router) {
		router.Post("/users/login", suite.login)
		router.Get("/articles", suite.listArticles)
		router.Post("/articles/{slug}/favorite", suite.favorite)
		router.Get("/tags", func(responseWriter http.ResponseWriter, request *http.Request) {
			suite.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{
				"tags": []string{"go", "ajax"},
			})
		})
	})

	suite.server = httptest.NewServer(router)
}

func (suite *ServerTestSuite) TearDownSuite() {
	suite.server.Close()
}

func (suite *ServerTestSuite) TestTransports() {
	for _, testCase := range []struct {
		name             string
		transportFactory transport.Factory
	}{
		{
			name:             "NetHTTP",
			transportFactory: nethttp.NewFactory(suite.logger, 5*time.Second, false),
		},
		{
			name:             "FastHTTP",
			transportFactory: fastclient.NewFactory(suite.logger, 5*time.Second, false, 4),
		},
	} {
		suite.Run(testCase.name, func() {
			ajaxClient, err := ajax.NewClient(suite.logger, testCase.transportFactory)
			suite.Require().NoError(err)

			client, err := NewClient(suite.logger, ajaxClient, suite.server.URL+"/api")
			suite.Require().NoError(err)

			// favoriting requires a token
			_, err = client.Favorite(suite.ctx, "how-to-train-your-dragon")
			suite.Require().Error(err)
			suite.Require().Equal(http.StatusUnauthorized, common.ResolveErrorStatusCodeOrDefault(err, 0))

			_, err = client.Login(suite.ctx, &Credentials{Email: "jake@jake.jake", Password: "wrong"})
			suite.Require().Error(err)
			suite.Require().Equal(http.StatusUnprocessableEntity, common.ResolveErrorStatusCodeOrDefault(err, 0))

			user, err := client.Login(suite.ctx, &Credentials{Email: "jake@jake.jake", Password: "jakejake"})
			suite.Require().NoError(err)
			suite.Require().Equal("jake", user.Username)
			suite.Require().Equal(suite.token, client.GetToken())

			article, err := client.Favorite(suite.ctx, "how-to-train-your-dragon")
			suite.Require().NoError(err)
			suite.Require().True(article.Favorited)
			suite.Require().Equal(1, article.FavoritesCount)

			articleList, err := client.ListArticles(suite.ctx, &ArticleFilter{Tag: "go"})
			suite.Require().NoError(err)
			suite.Require().Equal(1, articleList.ArticlesCount)
			suite.Require().Equal("go", articleList.Articles[0].TagList[0])

			tags, err := client.ListTags(suite.ctx)
			suite.Require().NoError(err)
			suite.Require().Equal([]string{"go", "ajax"}, tags)
		})
	}
}

func (suite *ServerTestSuite) login(responseWriter http.ResponseWriter, request *http.Request) {
	body := struct {
		User Credentials `json:"user"`
	}{}

	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		suite.writeJSON(responseWriter, http.StatusBadRequest, nil)
		return
	}

	if body.User.Password != "jakejake" {
		suite.writeJSON(responseWriter, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": map[string]interface{}{
				"email or password": []string{"is invalid"},
			},
		})
		return
	}

	suite.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"user": User{
			Email:    body.User.Email,
			Token:    suite.token,
			Username: "jake",
		},
	})
}

func (suite *ServerTestSuite) listArticles(responseWriter http.ResponseWriter, request *http.Request) {
	var articles []Article

	if tag := request.URL.Query().Get("tag"); tag != "" {
		articles = append(articles, Article{
			Slug:    "tagged",
			Title:   "Tagged",
			TagList: []string{tag},
		})
	}

	suite.writeJSON(responseWriter, http.StatusOK, ArticleList{
		Articles:      articles,
		ArticlesCount: len(articles),
	})
}

func (suite *ServerTestSuite) favorite(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Header.Get("Authorization") != "Token "+suite.token {
		suite.writeJSON(responseWriter, http.StatusUnauthorized, map[string]interface{}{
			"errors": map[string]interface{}{
				"token": []string{"is missing"},
			},
		})
		return
	}

	suite.writeJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"article": Article{
			Slug:           chi.URLParam(request, "slug"),
			Favorited:      true,
			FavoritesCount: 1,
		},
	})
}

func (suite *ServerTestSuite) writeJSON(responseWriter http.ResponseWriter, statusCode int, body interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(body) // nolint: errcheck
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
