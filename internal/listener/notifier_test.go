package listener

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestKafkaNotifier(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var n BlockNotification
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		require.Equal(t, uint64(12), n.Height)
		require.Equal(t, testutil.BlockHash(12), n.Hash)
		require.Equal(t, 3, n.Calls)
		require.Equal(t, 7, n.Events)
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	n := NewKafkaNotifierWithProducer(producer, "rwa.blocks", logger.NewNopLogger())

	block := &BlockNotification{
		Height:   12,
		Hash:     testutil.BlockHash(12),
		SlotTime: testutil.GenesisTime,
		Calls:    3,
		Events:   7,
	}
	require.NoError(t, n.NotifyBlock(t.Context(), block))
	require.ErrorIs(t, n.NotifyBlock(t.Context(), block), sarama.ErrOutOfBrokers)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	require.ErrorContains(t, n.NotifyBlock(t.Context(), block), "closed")
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := &config.NotifierConfig{Enabled: true, Brokers: []string{"localhost:9092"}}
	cfg.ApplyDefaults()

	sc := NewSaramaConfig(cfg)
	require.NoError(t, sc.Validate())
	require.Equal(t, "rwa-listener", sc.ClientID)
	require.True(t, sc.Producer.Return.Successes)
	require.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
}
