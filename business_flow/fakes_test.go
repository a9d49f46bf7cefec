package business_flow

import (
	"context"
	"errors"
	"time"

	"github.com/wasend/wasend/models"
	"github.com/wasend/wasend/repository"
)

// In-memory repository fakes used by the flow tests.

type fakeCampaignRepo struct {
	campaigns []*models.Campaign
	failSave  bool

	finalizedID        uint
	finalizedSucceeded int
	finalizedFailed    int
	finalizedAddrs     []string
	finalizeCalls      int
}

func (f *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	for _, c := range f.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	for _, c := range f.campaigns {
		if c.UUID.String() == uuid {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	return f.campaigns, nil
}

func (f *fakeCampaignRepo) Save(ctx context.Context, campaign *models.Campaign) error {
	if f.failSave {
		return errors.New("campaign insert failed")
	}
	_ = campaign.BeforeCreate()
	campaign.ID = uint(len(f.campaigns) + 1)
	f.campaigns = append(f.campaigns, campaign)
	return nil
}

func (f *fakeCampaignRepo) SaveBatch(ctx context.Context, campaigns []*models.Campaign) error {
	for _, c := range campaigns {
		if err := f.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	return int64(len(f.campaigns)), nil
}

func (f *fakeCampaignRepo) Finalize(ctx context.Context, id uint, successful, failed int, recipients []string, endedAt time.Time) error {
	f.finalizeCalls++
	f.finalizedID = id
	f.finalizedSucceeded = successful
	f.finalizedFailed = failed
	f.finalizedAddrs = recipients
	return nil
}

type fakePhoneStatRepo struct {
	stats      map[string]*models.PhoneNumberStat
	nextID     uint
	failLookup bool
}

func newFakePhoneStatRepo() *fakePhoneStatRepo {
	return &fakePhoneStatRepo{stats: make(map[string]*models.PhoneNumberStat)}
}

func (f *fakePhoneStatRepo) ByID(ctx context.Context, id uint) (*models.PhoneNumberStat, error) {
	for _, s := range f.stats {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakePhoneStatRepo) ByNumber(ctx context.Context, number string) (*models.PhoneNumberStat, error) {
	if f.failLookup {
		return nil, errors.New("stat lookup failed")
	}
	return f.stats[number], nil
}

func (f *fakePhoneStatRepo) ByFilter(ctx context.Context, filter models.PhoneNumberStatFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberStat, error) {
	out := make([]*models.PhoneNumberStat, 0, len(f.stats))
	for _, s := range f.stats {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakePhoneStatRepo) Save(ctx context.Context, stat *models.PhoneNumberStat) error {
	f.nextID++
	stat.ID = f.nextID
	f.stats[stat.Number] = stat
	return nil
}

func (f *fakePhoneStatRepo) SaveBatch(ctx context.Context, stats []*models.PhoneNumberStat) error {
	for _, s := range stats {
		if err := f.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePhoneStatRepo) Update(ctx context.Context, stat *models.PhoneNumberStat) error {
	f.stats[stat.Number] = stat
	return nil
}

func (f *fakePhoneStatRepo) Count(ctx context.Context, filter models.PhoneNumberStatFilter) (int64, error) {
	return int64(len(f.stats)), nil
}

func (f *fakePhoneStatRepo) Totals(ctx context.Context) (*repository.StatTotals, error) {
	totals := &repository.StatTotals{Numbers: int64(len(f.stats))}
	for _, s := range f.stats {
		totals.MessagesSent += int64(s.MessagesSent)
		totals.SuccessfulDeliveries += int64(s.SuccessfulDeliveries)
		totals.FailedDeliveries += int64(s.FailedDeliveries)
	}
	return totals, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	return f.users[id], nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
}

func (f *fakeAuditRepo) ByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	return nil, nil
}

func (f *fakeAuditRepo) ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) Save(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) SaveBatch(ctx context.Context, entries []*models.AuditLog) error {
	for _, e := range entries {
		if err := f.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAuditRepo) Count(ctx context.Context, filter models.AuditLogFilter) (int64, error) {
	return int64(len(f.entries)), nil
}

func (f *fakeAuditRepo) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	for _, e := range f.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}
