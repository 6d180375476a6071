package detector

import "github.com/priyag/fraudgraph/backend/internal/config"

// rule is a single linkage rule: a MERGE-based Cypher statement plus the
// parameters bounding it. Symmetric pair rules dedup by ordering the pair
// on id, so the unordered pair (a, b) always produces the same single edge
// no matter how often or in which order detection runs.
type rule struct {
	name   string
	cypher string
	params func(cfg config.DetectorConfig) map[string]any
}

func noParams(config.DetectorConfig) map[string]any { return map[string]any{} }

// ruleGroups returns the rule set partitioned into groups that write
// disjoint edge types. Order matters inside a group (business partners are
// derived from money-flow edges, entity links need their entities), but
// the groups themselves commute.
func ruleGroups() [][]rule {
	return [][]rule{
		{
			{name: RuleSharesEmail, cypher: sharesEmailCypher, params: noParams},
			{name: RuleSharesPhone, cypher: sharesPhoneCypher, params: noParams},
			{name: RuleSharesAddress, cypher: sharesAddressCypher, params: noParams},
			{name: RuleFamilyMember, cypher: familyMemberCypher, params: noParams},
		},
		{
			{name: RuleSameIP, cypher: sameIPCypher, params: func(cfg config.DetectorConfig) map[string]any {
				return map[string]any{"pairLimit": cfg.SameIPPairLimit}
			}},
			{name: RuleSameDevice, cypher: sameDeviceCypher, params: func(cfg config.DetectorConfig) map[string]any {
				return map[string]any{"pairLimit": cfg.SameDevicePairLimit}
			}},
			{name: RuleTemporalLink, cypher: temporalLinkCypher, params: func(cfg config.DetectorConfig) map[string]any {
				return map[string]any{
					"pairLimit":     cfg.TemporalPairLimit,
					"windowSeconds": cfg.TemporalWindowSeconds,
				}
			}},
			{name: RuleAmountPattern, cypher: amountPatternCypher, params: func(cfg config.DetectorConfig) map[string]any {
				return map[string]any{"pairLimit": cfg.AmountPatternLimit}
			}},
		},
		{
			{name: RuleMoneyFlow, cypher: moneyFlowCypher, params: noParams},
			{name: RuleBusinessPartner, cypher: businessPartnerCypher, params: noParams},
		},
		{
			{name: RuleDeviceNodes, cypher: deviceNodesCypher, params: noParams},
			{name: RuleIPNodes, cypher: ipNodesCypher, params: noParams},
			{name: RuleEmailDomainNodes, cypher: emailDomainNodesCypher, params: noParams},
			{name: RulePhonePrefixNodes, cypher: phonePrefixNodesCypher, params: noParams},
			{name: RuleAddressNodes, cypher: addressNodesCypher, params: noParams},
			{name: RuleHasEmail, cypher: hasEmailCypher, params: noParams},
			{name: RuleHasPhone, cypher: hasPhoneCypher, params: noParams},
			{name: RuleHasAddress, cypher: hasAddressCypher, params: noParams},
			{name: RuleUsedIP, cypher: usedIPCypher, params: noParams},
			{name: RuleUsedDevice, cypher: usedDeviceCypher, params: noParams},
			{name: RuleUsesDevice, cypher: usesDeviceCypher, params: noParams},
			{name: RuleUsesIP, cypher: usesIPCypher, params: noParams},
		},
	}
}

// Rule names reported in detection results.
const (
	RuleSharesEmail      = "shares_email"
	RuleSharesPhone      = "shares_phone"
	RuleSharesAddress    = "shares_address"
	RuleFamilyMember     = "family_member"
	RuleSameIP           = "same_ip"
	RuleSameDevice       = "same_device"
	RuleTemporalLink     = "temporal_link"
	RuleAmountPattern    = "amount_pattern"
	RuleMoneyFlow        = "money_flow"
	RuleBusinessPartner  = "business_partner"
	RuleDeviceNodes      = "device_nodes"
	RuleIPNodes          = "ip_address_nodes"
	RuleEmailDomainNodes = "email_domain_nodes"
	RulePhonePrefixNodes = "phone_prefix_nodes"
	RuleAddressNodes     = "address_nodes"
	RuleHasEmail         = "has_email"
	RuleHasPhone         = "has_phone"
	RuleHasAddress       = "has_address"
	RuleUsedIP           = "used_ip"
	RuleUsedDevice       = "used_device"
	RuleUsesDevice       = "uses_device"
	RuleUsesIP           = "uses_ip"
)

const sharesEmailCypher = `
MATCH (u1:User), (u2:User)
WHERE u1.id < u2.id
  AND u1.email IS NOT NULL AND u1.email <> ""
  AND u1.email = u2.email
  AND ($subjectId = "" OR u1.id = $subjectId OR u2.id = $subjectId)
MERGE (u1)-[r:SHARES_EMAIL]->(u2)
SET r.attribute = 'email',
    r.value = u1.email
RETURN count(r) AS edges
`

const sharesPhoneCypher = `
MATCH (u1:User), (u2:User)
WHERE u1.id < u2.id
  AND u1.phone IS NOT NULL AND u1.phone <> ""
  AND u1.phone = u2.phone
  AND ($subjectId = "" OR u1.id = $subjectId OR u2.id = $subjectId)
MERGE (u1)-[r:SHARES_PHONE]->(u2)
SET r.attribute = 'phone',
    r.value = u1.phone
RETURN count(r) AS edges
`

const sharesAddressCypher = `
MATCH (u1:User), (u2:User)
WHERE u1.id < u2.id
  AND u1.address IS NOT NULL AND u1.address <> ""
  AND u1.address = u2.address
  AND ($subjectId = "" OR u1.id = $subjectId OR u2.id = $subjectId)
MERGE (u1)-[r:SHARES_ADDRESS]->(u2)
SET r.attribute = 'address',
    r.value = u1.address
RETURN count(r) AS edges
`

const familyMemberCypher = `
MATCH (u1:User), (u2:User)
WHERE u1.id < u2.id
  AND u1.address IS NOT NULL AND u1.address <> ""
  AND u1.address = u2.address
  AND any(tok IN split(coalesce(u2.name, ""), ' ') WHERE tok <> "" AND u1.name CONTAINS tok)
  AND any(tok IN split(coalesce(u1.name, ""), ' ') WHERE tok <> "" AND u2.name CONTAINS tok)
  AND ($subjectId = "" OR u1.id = $subjectId OR u2.id = $subjectId)
MERGE (u1)-[r:FAMILY_MEMBER]->(u2)
SET r.relationship = 'address_name_match',
    r.confidence = 0.8
RETURN count(r) AS edges
`

const sameIPCypher = `
MATCH (t1:Transaction), (t2:Transaction)
WHERE t1.id < t2.id
  AND t1.ipAddress IS NOT NULL AND t1.ipAddress <> ""
  AND t1.ipAddress = t2.ipAddress
  AND ($subjectId = "" OR t1.id = $subjectId OR t2.id = $subjectId)
WITH t1, t2
LIMIT $pairLimit
MERGE (t1)-[r:SAME_IP]->(t2)
SET r.ipAddress = t1.ipAddress
RETURN count(r) AS edges
`

const sameDeviceCypher = `
MATCH (t1:Transaction), (t2:Transaction)
WHERE t1.id < t2.id
  AND t1.deviceId IS NOT NULL AND t1.deviceId <> ""
  AND t1.deviceId = t2.deviceId
  AND ($subjectId = "" OR t1.id = $subjectId OR t2.id = $subjectId)
WITH t1, t2
LIMIT $pairLimit
MERGE (t1)-[r:SAME_DEVICE]->(t2)
SET r.deviceId = t1.deviceId
RETURN count(r) AS edges
`

const temporalLinkCypher = `
MATCH (t1:Transaction), (t2:Transaction)
WHERE t1.id < t2.id
  AND t1.timestamp IS NOT NULL AND t1.timestamp <> ""
  AND t2.timestamp IS NOT NULL AND t2.timestamp <> ""
  AND ($subjectId = "" OR t1.id = $subjectId OR t2.id = $subjectId)
WITH t1, t2,
     abs(duration.between(datetime(t1.timestamp), datetime(t2.timestamp)).seconds) AS timeDiff
WHERE timeDiff > 0 AND timeDiff < $windowSeconds
WITH t1, t2, timeDiff
LIMIT $pairLimit
MERGE (t1)-[r:TEMPORAL_LINK]->(t2)
SET r.timeDifferenceSeconds = timeDiff,
    r.confidence = 1.0 - (toFloat(timeDiff) / toFloat($windowSeconds))
RETURN count(r) AS edges
`

const amountPatternCypher = `
MATCH (t1:Transaction), (t2:Transaction)
WHERE t1.id < t2.id
  AND t1.amount >= 1000 AND t2.amount >= 1000
  AND abs(t1.amount - t2.amount) / t1.amount < 0.1
  AND ($subjectId = "" OR t1.id = $subjectId OR t2.id = $subjectId)
WITH t1, t2, abs(t1.amount - t2.amount) AS amountDiff
LIMIT $pairLimit
MERGE (t1)-[r:AMOUNT_PATTERN]->(t2)
SET r.amountDifference = amountDiff,
    r.similarity = 1.0 - (amountDiff / t1.amount)
RETURN count(r) AS edges
`

const moneyFlowCypher = `
MATCH (origin:User)-[:MADE_TRANSACTION]->(t:Transaction)
WHERE t.status = 'completed'
  AND t.type IN ['transfer', 'payment']
  AND t.destinationUserId IS NOT NULL AND t.destinationUserId <> ""
  AND ($subjectId = "" OR origin.id = $subjectId OR t.destinationUserId = $subjectId)
MATCH (dest:User {id: t.destinationUserId})
WHERE dest.id <> origin.id
MERGE (origin)-[s:SENT_MONEY_TO {transactionId: t.id}]->(dest)
SET s.amount = t.amount,
    s.currency = t.currency,
    s.timestamp = t.timestamp
MERGE (dest)-[rcv:RECEIVED_MONEY_FROM {transactionId: t.id}]->(origin)
SET rcv.amount = t.amount,
    rcv.currency = t.currency,
    rcv.timestamp = t.timestamp
RETURN count(s) + count(rcv) AS edges
`

const businessPartnerCypher = `
MATCH (u1:User)-[s:SENT_MONEY_TO]-(u2:User)
WHERE u1.id < u2.id
  AND ($subjectId = "" OR u1.id = $subjectId OR u2.id = $subjectId)
WITH u1, u2, count(s) AS txCount
WHERE txCount >= 5
MERGE (u1)-[r:BUSINESS_PARTNER]->(u2)
SET r.transactionCount = txCount,
    r.confidence = CASE
      WHEN txCount >= 10 THEN 0.9
      WHEN txCount >= 7 THEN 0.7
      ELSE 0.5
    END
RETURN count(r) AS edges
`

const deviceNodesCypher = `
MATCH (t:Transaction)
WHERE t.deviceId IS NOT NULL AND t.deviceId <> ""
  AND ($subjectId = "" OR t.id = $subjectId)
WITH DISTINCT t.deviceId AS deviceId
MERGE (d:Device {id: deviceId})
SET d.type = CASE
  WHEN deviceId CONTAINS 'mobile' THEN 'mobile'
  WHEN deviceId CONTAINS 'desktop' THEN 'desktop'
  WHEN deviceId CONTAINS 'tablet' THEN 'tablet'
  ELSE 'unknown'
END
RETURN count(d) AS edges
`

const ipNodesCypher = `
MATCH (t:Transaction)
WHERE t.ipAddress IS NOT NULL AND t.ipAddress <> ""
  AND ($subjectId = "" OR t.id = $subjectId)
WITH DISTINCT t.ipAddress AS ipAddr
MERGE (ip:IPAddress {address: ipAddr})
SET ip.isPrivate = ipAddr STARTS WITH '192.168' OR ipAddr STARTS WITH '10.'
RETURN count(ip) AS edges
`

const emailDomainNodesCypher = `
MATCH (u:User)
WHERE u.email IS NOT NULL AND u.email CONTAINS '@'
  AND ($subjectId = "" OR u.id = $subjectId)
WITH DISTINCT split(u.email, '@')[1] AS domain
MERGE (e:EmailDomain {domain: domain})
SET e.isCommon = domain IN ['gmail.com', 'yahoo.com', 'hotmail.com', 'outlook.com']
RETURN count(e) AS edges
`

const phonePrefixNodesCypher = `
MATCH (u:User)
WHERE u.phone IS NOT NULL AND u.phone <> ""
  AND ($subjectId = "" OR u.id = $subjectId)
WITH DISTINCT substring(u.phone, 0, 3) AS prefix
MERGE (p:PhonePrefix {prefix: prefix})
RETURN count(p) AS edges
`

const addressNodesCypher = `
MATCH (u:User)
WHERE u.address IS NOT NULL AND u.address <> ""
  AND ($subjectId = "" OR u.id = $subjectId)
WITH DISTINCT u.address AS addr
MERGE (a:Address {id: replace(addr, ' ', '_')})
SET a.fullAddress = addr,
    a.city = split(addr, ',')[0]
RETURN count(a) AS edges
`

const hasEmailCypher = `
MATCH (u:User)
WHERE u.email IS NOT NULL AND u.email CONTAINS '@'
  AND ($subjectId = "" OR u.id = $subjectId)
MATCH (e:EmailDomain {domain: split(u.email, '@')[1]})
MERGE (u)-[r:HAS_EMAIL]->(e)
RETURN count(r) AS edges
`

const hasPhoneCypher = `
MATCH (u:User)
WHERE u.phone IS NOT NULL AND u.phone <> ""
  AND ($subjectId = "" OR u.id = $subjectId)
MATCH (p:PhonePrefix {prefix: substring(u.phone, 0, 3)})
MERGE (u)-[r:HAS_PHONE]->(p)
RETURN count(r) AS edges
`

const hasAddressCypher = `
MATCH (u:User)
WHERE u.address IS NOT NULL AND u.address <> ""
  AND ($subjectId = "" OR u.id = $subjectId)
MATCH (a:Address {id: replace(u.address, ' ', '_')})
MERGE (u)-[r:HAS_ADDRESS]->(a)
RETURN count(r) AS edges
`

const usedIPCypher = `
MATCH (t:Transaction)
WHERE t.ipAddress IS NOT NULL AND t.ipAddress <> ""
  AND ($subjectId = "" OR t.id = $subjectId)
MATCH (ip:IPAddress {address: t.ipAddress})
MERGE (t)-[r:USED_IP]->(ip)
RETURN count(r) AS edges
`

const usedDeviceCypher = `
MATCH (t:Transaction)
WHERE t.deviceId IS NOT NULL AND t.deviceId <> ""
  AND ($subjectId = "" OR t.id = $subjectId)
MATCH (d:Device {id: t.deviceId})
MERGE (t)-[r:USED_DEVICE]->(d)
RETURN count(r) AS edges
`

const usesDeviceCypher = `
MATCH (u:User)-[:MADE_TRANSACTION]->(t:Transaction)-[:USED_DEVICE]->(d:Device)
WHERE ($subjectId = "" OR u.id = $subjectId)
MERGE (u)-[r:USES_DEVICE]->(d)
ON CREATE SET r.firstUsed = t.timestamp, r.transactionCount = 1
ON MATCH SET r.transactionCount = r.transactionCount + 1
RETURN count(DISTINCT r) AS edges
`

const usesIPCypher = `
MATCH (u:User)-[:MADE_TRANSACTION]->(t:Transaction)-[:USED_IP]->(ip:IPAddress)
WHERE ($subjectId = "" OR u.id = $subjectId)
MERGE (u)-[r:USES_IP]->(ip)
ON CREATE SET r.firstUsed = t.timestamp, r.transactionCount = 1
ON MATCH SET r.transactionCount = r.transactionCount + 1
RETURN count(DISTINCT r) AS edges
`
