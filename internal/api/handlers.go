package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RobinCoderZhao/newsdesk/internal/fetch"
	"github.com/RobinCoderZhao/newsdesk/internal/source"
	"github.com/RobinCoderZhao/newsdesk/internal/store"
	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
)

func (s *Server) handleNews(c *gin.Context) {
	category := c.Query("category")
	records := s.collector.ByCategory(category)
	c.JSON(http.StatusOK, gin.H{"count": len(records), "news": records})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少查询参数q"})
		return
	}
	records := s.collector.Search(query)
	c.JSON(http.StatusOK, gin.H{"count": len(records), "news": records})
}

func (s *Server) handleListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.collector.Registry().List()})
}

type addSourceRequest struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (s *Server) handleAddSource(c *gin.Context) {
	var req addSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	if err := s.collector.Registry().Add(req.URL, req.Name, req.Category, true); err != nil {
		var verr *source.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	src, _ := s.collector.Registry().Lookup(req.URL)
	c.JSON(http.StatusCreated, gin.H{"source": src})
}

func (s *Server) handleRemoveSource(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少查询参数url"})
		return
	}
	if !s.collector.Registry().Remove(url) {
		c.JSON(http.StatusNotFound, gin.H{"error": "未找到RSS源"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": url})
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.collector.Registry().Categories()})
}

func (s *Server) handleRefresh(c *gin.Context) {
	records := s.collector.FetchAll(c.Request.Context())

	var saved string
	if len(records) > 0 && s.store != nil {
		path, err := s.store.Save(records, "")
		if err != nil {
			s.logger.Error("failed to save snapshot", "error", err)
		} else {
			saved = path
		}
	}

	c.JSON(http.StatusOK, gin.H{"count": len(records), "snapshot": saved})
}

type analyzeRequest struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	PubDate string `json:"pub_date"`
	Content string `json:"content"`
	Kind    string `json:"kind"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}

	// Feed descriptions are often truncated or absent; pull the article
	// page text in that case so the model sees real content.
	content := req.Content
	if strings.TrimSpace(content) == "" && req.Link != "" {
		text, err := fetch.PageText(c.Request.Context(), s.collector.Fetcher(), req.Link)
		if err != nil {
			s.logger.Warn("failed to fetch article page", "link", req.Link, "error", err)
		} else {
			content = text
		}
	}

	item := llm.NewsItem{
		Title:   req.Title,
		Source:  req.Source,
		PubDate: req.PubDate,
		Content: content,
	}
	result, err := s.llm.Analyze(c.Request.Context(), item, req.Kind)
	if err != nil {
		var verr *llm.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if s.store != nil {
		rec := store.AnalysisRecord{Title: req.Title, AnalysisKind: req.Kind, Result: result}
		if _, err := s.store.SaveAnalysis(rec); err != nil {
			s.logger.Error("failed to save analysis", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
