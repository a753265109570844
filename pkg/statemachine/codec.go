package statemachine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"
)

// 状态机定义文件格式：
//
//	initial: idle
//	states:
//	  idle:
//	    transitions: {start: running}
//	  running:
//	    transitions: {stop: idle}
//
// states 的键顺序即声明顺序。JSON 文档使用相同的结构。

type orderedDoc struct {
	Initial State         `yaml:"initial"`
	States  yaml.MapSlice `yaml:"states"`
}

type typedDoc struct {
	States map[State]*StateConfig `yaml:"states"`
}

// ParseConfig 解析 YAML 或 JSON 格式的状态机定义
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	var err error
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cfg, nil
}

// UnmarshalYAML 实现 yaml.Unmarshaler，保留状态声明顺序
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ordered orderedDoc
	if err := unmarshal(&ordered); err != nil {
		return err
	}
	var typed typedDoc
	if err := unmarshal(&typed); err != nil {
		return err
	}

	c.Initial = ordered.Initial
	c.States = typed.States
	if c.States == nil {
		c.States = make(map[State]*StateConfig)
	}
	c.Order = yamlStateOrder(ordered.States, c.States)
	return nil
}

// yamlStateOrder 把 MapSlice 的键还原为状态名。
// 未加引号的 on/off/yes/no、数字等键在 MapSlice 中已被解析成 bool 或数值，
// 而 map[State] 解码保留原文，这里按解析结果把两者对上。
func yamlStateOrder(items yaml.MapSlice, states map[State]*StateConfig) []State {
	used := make(map[State]bool, len(states))
	// 解析结果 -> 原文键，同一结果有多个原文时按名称排序
	resolved := make(map[string][]State)
	for _, name := range sortedStates(states) {
		var v interface{}
		if err := yaml.Unmarshal([]byte(name), &v); err != nil {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		key := scalarKey(v)
		resolved[key] = append(resolved[key], name)
	}

	order := make([]State, 0, len(items))
	for _, item := range items {
		var name State
		if key, ok := item.Key.(string); ok {
			name = State(key)
		} else {
			key := scalarKey(item.Key)
			for len(resolved[key]) > 0 {
				candidate := resolved[key][0]
				resolved[key] = resolved[key][1:]
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		if _, ok := states[name]; !ok || used[name] {
			continue
		}
		used[name] = true
		order = append(order, name)
	}

	for _, name := range sortedStates(states) {
		if !used[name] {
			order = append(order, name)
		}
	}
	return order
}

// MarshalYAML 实现 yaml.Marshaler，按声明顺序输出状态
func (c Config) MarshalYAML() (interface{}, error) {
	states := yaml.MapSlice{}
	for _, name := range c.order() {
		states = append(states, yaml.MapItem{Key: string(name), Value: c.States[name]})
	}
	return yaml.MapSlice{
		{Key: "initial", Value: string(c.Initial)},
		{Key: "states", Value: states},
	}, nil
}

func scalarKey(v interface{}) string {
	return fmt.Sprintf("%T:%v", v, v)
}

// UnmarshalJSON 实现 json.Unmarshaler，内容由 encoding/json 解码，
// 声明顺序通过逐 token 遍历 states 对象得到。
func (c *Config) UnmarshalJSON(data []byte) error {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	order, err := jsonStateOrder(data)
	if err != nil {
		return err
	}

	c.Initial = doc.Initial
	c.States = doc.States
	if c.States == nil {
		c.States = make(map[State]*StateConfig)
	}
	c.Order = order
	return nil
}

type jsonDoc struct {
	Initial State                  `json:"initial"`
	States  map[State]*StateConfig `json:"states"`
}

// jsonStateOrder 返回 states 对象中键的出现顺序，重复键只保留第一次
func jsonStateOrder(data []byte) ([]State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	order := make([]State, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if key, _ := tok.(string); key != "states" {
			if err := skipJSONValue(dec); err != nil {
				return nil, err
			}
			continue
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			// null
			continue
		}
		seen := make(map[State]bool)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name := State(tok.(string))
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
			if err := skipJSONValue(dec); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func skipJSONValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}

// MarshalJSON 实现 json.Marshaler，按声明顺序输出状态
func (c Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	initial, err := json.Marshal(c.Initial)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"initial":`)
	buf.Write(initial)
	buf.WriteString(`,"states":{`)

	for i, name := range c.order() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.States[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteString("}}")
	return buf.Bytes(), nil
}
