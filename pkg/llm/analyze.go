package llm

import (
	"context"
	"fmt"
)

// Analysis kinds understood by Analyze. Anything else falls back to a
// generic instruction template.
const (
	AnalysisSummary    = "摘要"
	AnalysisDeep       = "深度分析"
	AnalysisViewpoints = "关键观点"
	AnalysisFactCheck  = "事实核查"
)

// NewsItem is the subset of a news record interpolated into analysis
// prompts.
type NewsItem struct {
	Title   string
	Source  string
	PubDate string
	Content string
}

func (n NewsItem) isEmpty() bool {
	return n.Title == "" && n.Source == "" && n.PubDate == "" && n.Content == ""
}

// Analyze runs one of the fixed analysis prompts over a news item. Without
// a configured API key it returns a clearly labeled placeholder instead of
// calling out; with one, transport failures and empty replies propagate.
func (c *Client) Analyze(ctx context.Context, item NewsItem, analysisKind string) (string, error) {
	if item.isEmpty() {
		return "", &ValidationError{Reason: "新闻数据不能为空"}
	}
	if analysisKind == "" {
		analysisKind = AnalysisSummary
	}

	if !c.HasAPIKey() {
		return mockAnalysis(item, analysisKind), nil
	}

	prompt := analysisPrompt(analysisKind, item)
	content, err := c.Chat(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		c.logger.Error("LLM request failed", "kind", analysisKind, "error", err)
		return "", err
	}
	return content, nil
}

func analysisPrompt(analysisKind string, item NewsItem) string {
	title := orDefault(item.Title, "无标题")
	source := orDefault(item.Source, "未知来源")
	content := orDefault(item.Content, "无内容")
	pubDate := orDefault(item.PubDate, "未知日期")

	switch analysisKind {
	case AnalysisSummary:
		return fmt.Sprintf(`请对以下新闻进行简明扼要的摘要分析。

新闻标题: %s
新闻来源: %s
发布日期: %s

新闻内容:
%s

请提供:
1. 一段200字以内的新闻摘要，包含关键信息点
2. 3-5个要点列表，提炼新闻中最重要的信息`, title, source, pubDate, content)

	case AnalysisDeep:
		return fmt.Sprintf(`请对以下新闻进行深度分析。

新闻标题: %s
新闻来源: %s
新闻内容:
%s

请提供背景、影响和发展趋势分析。`, title, source, content)

	case AnalysisViewpoints:
		return fmt.Sprintf(`请提取以下新闻中的关键观点和立场。

新闻标题: %s
新闻来源: %s
新闻内容:
%s

请分析:
1. 新闻中表达的主要观点
2. 各方立场和态度
3. 潜在的倾向性或偏见`, title, source, content)

	case AnalysisFactCheck:
		return fmt.Sprintf(`请对以下新闻进行事实核查分析。

新闻标题: %s
新闻来源: %s
新闻内容:
%s

请分析:
1. 新闻中的主要事实声明
2. 可能需要核实的关键信息点
3. 潜在的误导或不准确之处`, title, source, content)

	default:
		return fmt.Sprintf(`请对以下新闻进行%s。

新闻标题: %s
新闻来源: %s
新闻内容:
%s`, analysisKind, title, source, content)
	}
}

// mockAnalysis is the degraded-mode result used when no API key is set.
func mockAnalysis(item NewsItem, analysisKind string) string {
	title := orDefault(item.Title, "无标题")
	return fmt.Sprintf(`【%s结果 - 模拟】

这是对"%s"的%s。

由于未设置API密钥，这是一个模拟结果。请配置有效的LLM API密钥以获取真实分析。`,
		analysisKind, title, analysisKind)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
