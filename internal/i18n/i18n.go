// Package i18n holds the user-facing message catalog.
package i18n

import "fmt"

// Key identifies a catalog message.
type Key string

const (
	LoadHostsFailed      Key = "load_hosts_failed"
	LoadMetricsFailed    Key = "load_metrics_failed"
	RefreshFailed        Key = "refresh_failed"
	Refreshing           Key = "refreshing"
	ConnectionFailed     Key = "connection_failed"
	TestSucceeded        Key = "test_succeeded"
	TestSucceededSSH     Key = "test_succeeded_ssh"
	TestSucceededSim     Key = "test_succeeded_simulated"
	TestFailed           Key = "test_failed"
	CollectSucceeded     Key = "collect_succeeded"
	CollectFailed        Key = "collect_failed"
	HostAdded            Key = "host_added"
	HostAddFailed        Key = "host_add_failed"
	HostDeleted          Key = "host_deleted"
	HostDeleteFailed     Key = "host_delete_failed"
	SimulatedAdded       Key = "simulated_added"
	SimulatedBatchAdded  Key = "simulated_batch_added"
	RequiredFields       Key = "required_fields"
	InvalidIP            Key = "invalid_ip"
	InvalidCount         Key = "invalid_count"
	UnknownError         Key = "unknown_error"
	NetworkError         Key = "network_error"
	ConfirmDelete        Key = "confirm_delete"
	Unnamed              Key = "unnamed"
	SimulatedDefaultName Key = "simulated_default_name"
)

var catalogs = map[string]map[Key]string{
	"en": {
		LoadHostsFailed:      "Failed to load hosts: %s",
		LoadMetricsFailed:    "Failed to load metrics: %s",
		RefreshFailed:        "Refresh failed: %s",
		Refreshing:           "Refreshing...",
		ConnectionFailed:     "connection failed",
		TestSucceeded:        "Connection test succeeded",
		TestSucceededSSH:     "SSH connection test succeeded",
		TestSucceededSim:     "Simulated host connection test succeeded",
		TestFailed:           "Connection test failed: %s",
		CollectSucceeded:     "Collection succeeded",
		CollectFailed:        "Collection failed: %s",
		HostAdded:            "Host added",
		HostAddFailed:        "Add failed: %s",
		HostDeleted:          "Host deleted",
		HostDeleteFailed:     "Delete failed: %s",
		SimulatedAdded:       "Simulated host added",
		SimulatedBatchAdded:  "Added %d simulated hosts",
		RequiredFields:       "Please fill in all required fields",
		InvalidIP:            "Please enter a valid IP address",
		InvalidCount:         "Count must be at least 1",
		UnknownError:         "unknown error",
		NetworkError:         "Network error: %s",
		ConfirmDelete:        "Delete this host? Its monitoring data will be removed too.",
		Unnamed:              "Unnamed host",
		SimulatedDefaultName: "simulated-%s",
	},
	"zh": {
		LoadHostsFailed:      "加载主机列表失败: %s",
		LoadMetricsFailed:    "加载监控数据失败: %s",
		RefreshFailed:        "刷新失败: %s",
		Refreshing:           "刷新中...",
		ConnectionFailed:     "连接失败",
		TestSucceeded:        "连接测试成功",
		TestSucceededSSH:     "SSH连接测试成功",
		TestSucceededSim:     "模拟主机连接测试成功",
		TestFailed:           "连接测试失败: %s",
		CollectSucceeded:     "数据采集成功",
		CollectFailed:        "采集失败: %s",
		HostAdded:            "主机添加成功",
		HostAddFailed:        "添加失败: %s",
		HostDeleted:          "主机删除成功",
		HostDeleteFailed:     "删除失败: %s",
		SimulatedAdded:       "模拟主机添加成功",
		SimulatedBatchAdded:  "成功添加 %d 台模拟主机",
		RequiredFields:       "请填写所有必填字段",
		InvalidIP:            "请输入有效的 IP 地址",
		InvalidCount:         "数量必须至少为 1",
		UnknownError:         "未知错误",
		NetworkError:         "网络错误: %s",
		ConfirmDelete:        "确定要删除这个主机吗？相关的监控数据也会被删除。",
		Unnamed:              "未命名主机",
		SimulatedDefaultName: "模拟主机-%s",
	},
}

// DefaultLanguage is used when a requested language has no catalog.
const DefaultLanguage = "en"

// Catalog formats messages for one language.
type Catalog struct {
	lang     string
	messages map[Key]string
}

// New returns the catalog for lang, falling back to English.
func New(lang string) *Catalog {
	msgs, ok := catalogs[lang]
	if !ok {
		lang = DefaultLanguage
		msgs = catalogs[DefaultLanguage]
	}
	return &Catalog{lang: lang, messages: msgs}
}

// Language returns the resolved language code.
func (c *Catalog) Language() string {
	return c.lang
}

// T formats the message for key with args. Missing keys fall back to the
// English text, then to the key itself.
func (c *Catalog) T(key Key, args ...any) string {
	tmpl, ok := c.messages[key]
	if !ok {
		tmpl, ok = catalogs[DefaultLanguage][key]
		if !ok {
			tmpl = string(key)
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Languages lists the available catalog codes.
func Languages() []string {
	return []string{"en", "zh"}
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}
