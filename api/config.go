package api

import "time"

type ServerConfig struct {
	// ID 是這個服務實例的識別，當作consumer group內的consumer名稱
	ID string

	DB    DBConfig
	Redis RedisConfig
	Lock  LockConfig

	// RetentionWindow 冪等紀錄的保存窗口，必須長於上游的最大重送間隔
	RetentionWindow time.Duration
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix 所有key(鎖、快照)的共用前綴，便於多環境共用一個Redis
	KeyPrefix string

	// ConsumerGroup 生命週期stream的consumer group名稱
	ConsumerGroup string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	// Lifecycle 上游拍賣列表服務發布生命週期事件的stream
	Lifecycle string
	// Outcome 本服務發布結果事件的stream
	Outcome string
}

type LockConfig struct {
	// WaitTimeout 等待拍賣鎖的上限，超過就對呼叫端回報busy
	WaitTimeout time.Duration
	// Expiry 鎖的過期時間，持有期間會自動續期
	Expiry time.Duration
}
