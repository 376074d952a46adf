// NewsDesk — RSS 新闻聚合与 AI 分析工具
//
// Usage:
//
//	newsdesk fetch              # 抓取所有RSS源
//	newsdesk sources list       # 管理RSS源
//	newsdesk search 关键词       # 搜索新闻
//	newsdesk analyze            # AI 分析新闻
//	newsdesk chat               # AI 对话
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/newsdesk/internal/chat"
	"github.com/RobinCoderZhao/newsdesk/internal/collector"
	appcfg "github.com/RobinCoderZhao/newsdesk/internal/config"
	"github.com/RobinCoderZhao/newsdesk/internal/feed"
	"github.com/RobinCoderZhao/newsdesk/internal/fetch"
	"github.com/RobinCoderZhao/newsdesk/internal/source"
	"github.com/RobinCoderZhao/newsdesk/internal/store"
	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
)

var version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsdesk",
		Short: "RSS 新闻聚合与 AI 分析工具",
		Long:  "NewsDesk 聚合多个RSS新闻源，支持分类浏览、关键词搜索，并使用 LLM 进行新闻分析和对话。",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "newsdesk.yaml", "配置文件路径")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(testConnectionCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadDeps() (appcfg.Config, *collector.Collector, *store.Store, error) {
	cfg, err := appcfg.Load(configPath)
	if err != nil {
		return appcfg.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	reg := source.NewRegistry()
	source.RegisterDefaults(reg)
	col := collector.New(reg, fetch.NewHTTPFetcher(cfg.Fetch))

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return appcfg.Config{}, nil, nil, fmt.Errorf("open data dir: %w", err)
	}
	return cfg, col, st, nil
}

func fetchCmd() *cobra.Command {
	var save bool
	var category string

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "抓取RSS新闻",
		Long:  "抓取所有已注册RSS源（或指定URL的单个源），去重后输出新闻列表。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, col, st, err := loadDeps()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			records := runFetch(ctx, col, args)
			if category != "" {
				col.ReplaceCache(records)
				records = col.ByCategory(category)
			}

			fmt.Printf("📰 共获取 %d 条新闻\n\n", len(records))
			printRecords(records, 20)

			if save && len(records) > 0 {
				path, err := st.Save(records, "")
				if err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				fmt.Printf("\n💾 已保存到 %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&save, "save", "s", false, "保存新闻快照到数据目录")
	cmd.Flags().StringVarP(&category, "category", "c", "", "只显示指定分类")
	return cmd
}

func runFetch(ctx context.Context, col *collector.Collector, args []string) []feed.NewsRecord {
	if len(args) == 1 {
		records, err := col.FetchOne(ctx, args[0])
		if err != nil {
			fmt.Printf("⚠️  抓取失败: %v\n", err)
			return nil
		}
		return records
	}

	var records []feed.NewsRecord
	for ev := range collector.NewBackgroundFetcher(col).Run(ctx) {
		switch ev.Kind {
		case collector.EventProgress:
			fmt.Printf("\r⏳ %3d%% %s", ev.Percent, ev.Source)
		case collector.EventResult:
			fmt.Print("\r")
			records = ev.Records
		case collector.EventError:
			fmt.Printf("\r⚠️  抓取中断: %v\n", ev.Err)
		}
	}
	return records
}

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "管理RSS源",
	}
	cmd.AddCommand(sourcesListCmd(), sourcesAddCmd(), sourcesRemoveCmd())
	return cmd
}

func sourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出所有RSS源",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, col, _, err := loadDeps()
			if err != nil {
				return err
			}
			for _, src := range col.Registry().List() {
				marker := " "
				if src.UserAdded {
					marker = "*"
				}
				fmt.Printf("%s [%s] %s\n    %s\n", marker, src.Category, src.Name, src.URL)
			}
			return nil
		},
	}
}

func sourcesAddCmd() *cobra.Command {
	var name, category string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "添加RSS源",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, col, _, err := loadDeps()
			if err != nil {
				return err
			}
			if err := col.Registry().Add(args[0], name, category, true); err != nil {
				return fmt.Errorf("❌ %w", err)
			}
			src, _ := col.Registry().Lookup(args[0])
			fmt.Printf("✅ 已添加 [%s] %s\n", src.Category, src.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "源名称（默认取自URL）")
	cmd.Flags().StringVarP(&category, "category", "c", "", "分类（默认为未分类）")
	return cmd
}

func sourcesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "删除RSS源",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, col, _, err := loadDeps()
			if err != nil {
				return err
			}
			if !col.Registry().Remove(args[0]) {
				fmt.Println("⚠️  未找到该RSS源")
				return nil
			}
			fmt.Println("✅ 已删除")
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <关键词>",
		Short: "在最近一次快照中搜索新闻",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, col, st, err := loadDeps()
			if err != nil {
				return err
			}

			cached := st.Load("")
			if len(cached) == 0 {
				fmt.Println("⚠️  没有本地快照，请先运行 `newsdesk fetch --save`。")
				return nil
			}
			col.ReplaceCache(cached)

			results := col.Search(args[0])
			fmt.Printf("🔍 找到 %d 条匹配新闻\n\n", len(results))
			printRecords(results, 50)
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "analyze <标题>",
		Short: "AI 分析新闻",
		Long:  "从最近一次快照中找到标题匹配的新闻，使用 LLM 进行分析。分析类型：摘要、深度分析、关键观点、事实核查。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, col, st, err := loadDeps()
			if err != nil {
				return err
			}

			cached := st.Load("")
			if len(cached) == 0 {
				fmt.Println("⚠️  没有本地快照，请先运行 `newsdesk fetch --save`。")
				return nil
			}
			col.ReplaceCache(cached)

			matches := col.Search(args[0])
			if len(matches) == 0 {
				fmt.Println("⚠️  未找到匹配的新闻。")
				return nil
			}
			record := matches[0]

			client := llm.NewClient(cfg.LLM)
			if !client.HasAPIKey() {
				fmt.Println("ℹ️  未配置API密钥，将输出模拟分析结果。")
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout)
			defer cancel()

			content := record.Description
			if strings.TrimSpace(content) == "" && record.Link != "" {
				fmt.Println("📄 摘要为空，正在抓取原文...")
				if text, err := fetch.PageText(ctx, col.Fetcher(), record.Link); err != nil {
					fmt.Printf("⚠️  抓取原文失败: %v\n", err)
				} else {
					content = text
				}
			}

			fmt.Printf("🤖 正在分析: %s\n\n", record.Title)
			result, err := client.Analyze(ctx, llm.NewsItem{
				Title:   record.Title,
				Source:  record.SourceName,
				PubDate: record.PubDate,
				Content: content,
			}, kind)
			if err != nil {
				return fmt.Errorf("分析失败: %w", err)
			}
			fmt.Println(result)

			if _, err := st.SaveAnalysis(store.AnalysisRecord{
				Title:        record.Title,
				AnalysisKind: kind,
				Result:       result,
			}); err != nil {
				fmt.Printf("⚠️  保存分析结果失败: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", llm.AnalysisSummary, "分析类型")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "与 AI 助手对话",
		Long:  "进入交互式对话。输入 exit 退出，输入 reset 清空对话历史。",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadDeps()
			if err != nil {
				return err
			}

			session := chat.NewSession(llm.NewClient(cfg.LLM))
			fmt.Println("💬 NewsDesk 对话模式（exit 退出，reset 清空历史）")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\n> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				case "reset":
					session.Reset()
					fmt.Println("🔄 对话历史已清空")
					continue
				}

				done := make(chan struct{})
				printed := 0
				session.Send(context.Background(), line, "", func(accumulated string, finished bool) {
					fmt.Print(accumulated[printed:])
					printed = len(accumulated)
					if finished {
						fmt.Println()
						close(done)
					}
				})
				<-done
			}
		},
	}
}

func testConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "测试 LLM API 连接",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appcfg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client := llm.NewClient(cfg.LLM)
			fmt.Printf("🔌 正在测试 %s (%s)...\n", cfg.LLM.APIURL, client.Kind())
			if client.TestConnection(context.Background()) {
				fmt.Println("✅ 连接成功")
				return nil
			}
			fmt.Println("❌ 连接失败，请检查API设置和网络。")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsdesk %s\n", version)
		},
	}
}

func printRecords(records []feed.NewsRecord, limit int) {
	for i, r := range records {
		if i >= limit {
			fmt.Printf("... 以及其余 %d 条\n", len(records)-limit)
			return
		}
		fmt.Printf("[%s] %s\n    %s\n", r.Category, r.Title, r.Link)
	}
}
