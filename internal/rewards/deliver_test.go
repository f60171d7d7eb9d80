package rewards

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
)

func TestMintCouponCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := MintCouponCode()
		require.NoError(t, err)
		require.Len(t, code, 10)
		assert.True(t, strings.HasPrefix(code, "WEB-"))
		for _, ch := range code[4:] {
			assert.Contains(t, couponAlphabet, string(ch))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestDeliverRouting(t *testing.T) {
	logger := zap.NewNop()
	sender := NewLogSender(logger)
	d := NewDeliverer(sender, sender, sender, sender, logger)
	ctx := context.Background()
	claim := models.RewardClaim{}

	t.Run("download and coupon need no external call", func(t *testing.T) {
		assert.NoError(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverDownload}, claim, "a@b.c"))
		assert.NoError(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverCoupon}, claim, "a@b.c"))
	})

	t.Run("email and line go through collaborators", func(t *testing.T) {
		assert.NoError(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverEmail}, claim, "a@b.c"))
		assert.NoError(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverLine}, claim, "a@b.c"))
	})

	t.Run("tag and unlock require a target", func(t *testing.T) {
		assert.Error(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverTagAdd}, claim, "a@b.c"))
		assert.Error(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverUnlockContent}, claim, "a@b.c"))

		target := "vip"
		assert.NoError(t, d.Deliver(ctx, models.Reward{DeliveryType: models.DeliverTagAdd, DeliveryTarget: &target}, claim, "a@b.c"))
	})

	t.Run("unknown type errors", func(t *testing.T) {
		assert.Error(t, d.Deliver(ctx, models.Reward{DeliveryType: "CARRIER_PIGEON"}, claim, "a@b.c"))
	})
}
