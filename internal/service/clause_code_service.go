package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"twse-announcements/internal/entity"
	"twse-announcements/internal/repository"
	"twse-announcements/pkg/logger"

	"github.com/patrickmn/go-cache"
)

const clauseCodeCacheKey = "clause_codes"

// unparsedClauseOrder places non-numeric codes after every real clause.
const unparsedClauseOrder = 999

// DefaultClauseCodes is the regulatory clause table seeded into an empty store.
var DefaultClauseCodes = []entity.ClauseCode{
	{Code: "1", Description: "信用異常或股票交易異動"},
	{Code: "2", Description: "涉訟或主管違法"},
	{Code: "3", Description: "停工、減產、資產處理"},
	{Code: "4", Description: "公司法重大決議"},
	{Code: "5", Description: "重整或破產程序"},
	{Code: "6", Description: "高層人事異動或席次不足"},
	{Code: "7", Description: "更換會計師或承銷商"},
	{Code: "8", Description: "重要主管異動"},
	{Code: "9", Description: "會計年度或政策變更"},
	{Code: "10", Description: "重大契約、合作或新產品量產"},
	{Code: "11", Description: "資本變動或合併收購"},
	{Code: "12", Description: "說明會或未申報資訊發布"},
	{Code: "13", Description: "財務預測差異重大"},
	{Code: "14", Description: "股利政策異動或延遲"},
	{Code: "15", Description: "大額投資計畫"},
	{Code: "16", Description: "增資或債券計畫變動"},
	{Code: "17", Description: "股東會召開通知"},
	{Code: "18", Description: "股東會重要決議"},
	{Code: "19", Description: "舞弊、掏空或主管遭羈押"},
	{Code: "20", Description: "資產交易或衍生損失重大"},
	{Code: "21", Description: "經理人或董事競業行為"},
	{Code: "22", Description: "背書保證達標準"},
	{Code: "23", Description: "資金貸與達標準"},
	{Code: "24", Description: "私募證券交易"},
	{Code: "25", Description: "主要客戶或供應商終止往來"},
	{Code: "26", Description: "災難、罷工、資安等重大事件"},
	{Code: "27", Description: "與銀行協商結果確定"},
	{Code: "28", Description: "關係人或債務人信用異常"},
	{Code: "29", Description: "內控聲明或審查報告"},
	{Code: "30", Description: "財報錯誤或遭保留意見"},
	{Code: "31", Description: "財報提報或自結資訊異動"},
	{Code: "32", Description: "股票集中保管不足"},
	{Code: "33", Description: "股權變動通知"},
	{Code: "34", Description: "董監事遭停止職權"},
	{Code: "35", Description: "公司買回股份"},
	{Code: "36", Description: "減資或面額異動作業"},
	{Code: "37", Description: "上市承諾未履行"},
	{Code: "38", Description: "公開收購申報或通知"},
	{Code: "40", Description: "暫停或恢復交易"},
	{Code: "41", Description: "控股公司持股變動"},
	{Code: "42", Description: "終止上市或改列申請"},
	{Code: "43", Description: "重大捐贈"},
	{Code: "44", Description: "委員會反對或董事會逾越建議"},
	{Code: "45", Description: "增資由特定人認購"},
	{Code: "46", Description: "子公司達終止上市標準或營收為零"},
	{Code: "47", Description: "海外財報與台灣準則差異"},
	{Code: "48", Description: "特定營業細則情事"},
	{Code: "49", Description: "子公司控制力喪失或持股下降"},
	{Code: "50", Description: "子公司海外掛牌相關事項"},
	{Code: "51", Description: "其他重大決策或影響股價事件"},
}

// ClauseCodeService owns the clause-code reference table. The table is
// seeded once when the store is empty and is read-only afterwards; Reseed
// is the only way to rebuild it.
type ClauseCodeService interface {
	EnsureSeeded(ctx context.Context) (bool, error)
	Load(ctx context.Context) error
	Reseed(ctx context.Context) (int, error)
	List(ctx context.Context) ([]entity.ClauseCode, error)
	Describe(code string) string
}

// NewClauseCodeService creates a new ClauseCodeService.
func NewClauseCodeService(repo repository.ClauseCodeRepository, log *logger.Logger) ClauseCodeService {
	return &clauseCodeService{
		repo:   repo,
		logger: log,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

type clauseCodeService struct {
	repo   repository.ClauseCodeRepository
	logger *logger.Logger
	cache  *cache.Cache
	seedMu sync.Mutex
}

// EnsureSeeded inserts the default table iff the store is empty and reports
// whether it did.
func (s *clauseCodeService) EnsureSeeded(ctx context.Context) (bool, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count clause codes: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.repo.CreateBatch(ctx, defaultClauseCodes()); err != nil {
		return false, fmt.Errorf("failed to seed clause codes: %w", err)
	}
	s.logger.InfoContext(ctx, "Seeded clause code table", logger.IntField("count", len(DefaultClauseCodes)))
	return true, nil
}

// Load reads the table into the in-process cache.
func (s *clauseCodeService) Load(ctx context.Context) error {
	codes, err := s.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load clause codes: %w", err)
	}
	sortClauseCodes(codes)

	table := make(map[string]string, len(codes))
	for _, c := range codes {
		table[c.Code] = c.Description
	}
	s.cache.SetDefault(clauseCodeCacheKey, clauseTable{codes: codes, byCode: table})
	return nil
}

// Reseed clears the store, seeds the default table and reloads the cache.
func (s *clauseCodeService) Reseed(ctx context.Context) (int, error) {
	s.seedMu.Lock()
	if err := s.repo.DeleteAll(ctx); err != nil {
		s.seedMu.Unlock()
		return 0, fmt.Errorf("failed to clear clause codes: %w", err)
	}
	if err := s.repo.CreateBatch(ctx, defaultClauseCodes()); err != nil {
		s.seedMu.Unlock()
		return 0, fmt.Errorf("failed to seed clause codes: %w", err)
	}
	s.seedMu.Unlock()

	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Reseeded clause code table", logger.IntField("count", len(DefaultClauseCodes)))
	return len(DefaultClauseCodes), nil
}

// List returns the table in numeric code order, loading it on first use.
func (s *clauseCodeService) List(ctx context.Context) ([]entity.ClauseCode, error) {
	table, ok := s.table()
	if !ok {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
		table, _ = s.table()
	}
	out := make([]entity.ClauseCode, len(table.codes))
	copy(out, table.codes)
	return out, nil
}

// Describe returns the description for code, or "" when the table is not
// loaded or the code is unknown.
func (s *clauseCodeService) Describe(code string) string {
	table, ok := s.table()
	if !ok {
		return ""
	}
	return table.byCode[code]
}

type clauseTable struct {
	codes  []entity.ClauseCode
	byCode map[string]string
}

func (s *clauseCodeService) table() (clauseTable, bool) {
	v, found := s.cache.Get(clauseCodeCacheKey)
	if !found {
		return clauseTable{}, false
	}
	return v.(clauseTable), true
}

func defaultClauseCodes() []entity.ClauseCode {
	out := make([]entity.ClauseCode, len(DefaultClauseCodes))
	copy(out, DefaultClauseCodes)
	return out
}

// ClauseOrder is the sort key for a clause code.
func ClauseOrder(code string) int {
	n, err := strconv.Atoi(code)
	if err != nil {
		return unparsedClauseOrder
	}
	return n
}

func sortClauseCodes(codes []entity.ClauseCode) {
	sort.SliceStable(codes, func(i, j int) bool {
		return ClauseOrder(codes[i].Code) < ClauseOrder(codes[j].Code)
	})
}
