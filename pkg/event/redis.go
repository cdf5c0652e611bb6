package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/youlu/youlu/pkg/logger"
)

// RedisPublisher 将事件发布到Redis频道
// 供外部协作方（看板、通知服务）订阅消费；发布失败只记日志，
// 不影响优化主流程
type RedisPublisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
}

// NewRedisPublisher 创建Redis事件发布器
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
	}
}

// Handle 实现 Listener 接口
func (p *RedisPublisher) Handle(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.WithError(err).Str("event", string(e.Type)).Msg("事件序列化失败")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		logger.WithError(err).Str("event", string(e.Type)).Msg("事件发布到Redis失败")
	}
}
